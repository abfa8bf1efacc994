package main

import "github.com/geonet-ops/portal-admin-services/cmd"

func main() {
	cmd.Execute()
}
