package cmd

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/geonet-ops/portal-admin-services/api/portal"
)

var orgUsersMax int

var orgCmd = &cobra.Command{
	Use:   "org",
	Short: "Inspect the portal organization",
}

var orgInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the organization properties",
	Run: func(cmd *cobra.Command, args []string) {
		setUp()
		info, err := newPortalClient().Info(context.Background())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to fetch portal properties")
		}
		printJSON(info)
	},
}

var orgUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List all members of the organization",
	Run: func(cmd *cobra.Command, args []string) {
		setUp()
		users, err := newPortalClient().OrgUsers(&portal.SearchOptions{Max: orgUsersMax}).All(context.Background())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to list org users")
		}
		printJSON(users)
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the account the session is authenticated as",
	Run: func(cmd *cobra.Command, args []string) {
		setUp()
		user, err := newPortalClient().LoggedInUser(context.Background())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to fetch logged-in user")
		}
		printJSON(user)
	},
}

func init() {
	orgUsersCmd.Flags().IntVar(&orgUsersMax, "max", 0, "maximum number of results (0 = all)")

	orgCmd.AddCommand(orgInfoCmd, orgUsersCmd)
	rootCmd.AddCommand(orgCmd, whoamiCmd)
}
