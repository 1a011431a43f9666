package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"subpad/internal/config"
	"subpad/internal/prefs"
	"subpad/internal/server"
	"subpad/internal/translate"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SubPad editor server",
	Long: `Start the HTTP server the browser editor talks to.

The server holds the open documents in memory; only the AI instruction
preference is persisted. Translation is enabled when the configured
provider's API key environment variable is set.

Examples:
  subpad serve
  subpad serve --bind 0.0.0.0:9000
  subpad serve --config ~/.subpad/config.toml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().
		StringP("bind", "b", "", "Bind address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if bind, _ := cmd.Flags().GetString("bind"); bind != "" {
		cfg.Server.Bind = bind
	}

	store, err := prefs.Open(cfg.PrefsPath)
	if err != nil {
		return fmt.Errorf("failed to open preferences store: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()

	var svc translate.Service
	if apiKey := cfg.APIKey(); apiKey != "" {
		svc, err = translate.Factory(
			context.Background(),
			translate.Provider(cfg.Translation.Provider),
			apiKey,
			translate.Options{Model: cfg.Translation.Model},
		)
		if err != nil {
			return fmt.Errorf("failed to create translation service: %w", err)
		}
		logger.Infow("Translation enabled",
			"provider", cfg.Translation.Provider,
			"model", cfg.Translation.Model,
		)
	} else {
		logger.Infow("Translation disabled: no API key",
			"env", cfg.Translation.APIKeyEnv,
		)
	}

	srv := server.New(logger, store, svc)
	return srv.Listen(cfg.Server.Bind)
}
