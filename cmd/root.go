package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/geonet-ops/portal-admin-services/api/portal"
	"github.com/geonet-ops/portal-admin-services/internal/appconfig"
)

var (
	logLevel   string
	configPath string
	appCfg     *appconfig.Config
)

var rootCmd = &cobra.Command{
	Use:   "portal-admin",
	Short: "Portal Admin",
	Long:  `Portal Admin is a CLI tool for managing users and groups on an ArcGIS Portal or ArcGIS Online organization.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn",
		"sets the log level")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "portal-admin.yaml",
		"path to the config file")
}

func setUp() {
	setLogging(logLevel)

	// A .env alongside the config keeps secrets out of the YAML itself.
	_ = godotenv.Load()

	cfg, err := appconfig.LoadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	appCfg = cfg
}

func setLogging(level string) {
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	switch strings.ToLower(level) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
}

// newPortalClient builds the client from the loaded config, prompting for
// the password on the terminal when it is not configured.
func newPortalClient() *portal.Client {
	pc := appCfg.Portal

	if pc.Password == "" && pc.Username != "" {
		fmt.Fprintf(os.Stderr, "Password for %s: ", pc.Username)
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to read password")
		}
		pc.Password = string(raw)
	}

	ses, err := portal.NewSession(portal.SessionConfig{
		URL:               pc.URL,
		Username:          pc.Username,
		Password:          pc.Password,
		Referer:           pc.Referer,
		TokenLifetime:     pc.TokenLifetime(),
		Timeout:           pc.RequestTimeout(),
		RequestsPerSecond: pc.RequestsPerSecond,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create portal session")
	}
	return portal.NewClient(ses)
}

// printJSON writes the command result to stdout for scripting.
func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to encode output")
	}
	fmt.Println(string(out))
}
