package main

import (
	"os"

	"github.com/jrsteele09/go-atlassian-gateway/internal/config"
	"github.com/jrsteele09/go-atlassian-gateway/internal/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "atlassian-gateway",
	Short: "Session-scoped credential broker for Jira and Confluence Cloud",
	Long: `atlassian-gateway authenticates browser users against Jira or Confluence
(OAuth 2.0 3LO or email + API token), keeps the credentials server-side behind an
opaque session cookie and proxies read-only REST calls to the right Atlassian site.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg := config.New()
		logging.Init(cfg.GetLogLevel(), cfg.GetLogFormat(), os.Stderr)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("execution failed")
	}
}

func init() {
	// pre-flag logger
	logging.InitDefault()

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	_ = viper.BindPFlag(config.LogLevelKey, rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().String("log-format", "console", "Log format (console, json)")
	_ = viper.BindPFlag(config.LogFormatKey, rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(serveCmd)
}
