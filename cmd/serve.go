package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gridwatch/solarcast/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	Long: `Run the web server that:
- Serves the location registry pages (list, create, edit, delete)
- Refreshes forecast snapshots from the Solcast API on demand
- Persists snapshots to PostgreSQL
- Renders forecast charts inline`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Serve-specific flags
	serveCmd.Flags().Int("http-port", 8080, "HTTP server port")
	serveCmd.Flags().String("db-host", "localhost", "PostgreSQL host")
	serveCmd.Flags().Int("db-port", 5432, "PostgreSQL port")
	serveCmd.Flags().String("db-user", "postgres", "PostgreSQL user")
	serveCmd.Flags().String("db-password", "", "PostgreSQL password")
	serveCmd.Flags().String("db-name", "solarcast", "PostgreSQL database name")
	serveCmd.Flags().String("db-sslmode", "disable", "PostgreSQL SSL mode")
	serveCmd.Flags().String("solcast-url", "", "Solcast API base URL (default production endpoint)")
	serveCmd.Flags().String("solcast-api-key", "", "Default Solcast API key (per-location overrides take precedence)")

	// Bind flags to viper
	_ = viper.BindPFlag("http.port", serveCmd.Flags().Lookup("http-port"))
	_ = viper.BindPFlag("db.host", serveCmd.Flags().Lookup("db-host"))
	_ = viper.BindPFlag("db.port", serveCmd.Flags().Lookup("db-port"))
	_ = viper.BindPFlag("db.user", serveCmd.Flags().Lookup("db-user"))
	_ = viper.BindPFlag("db.password", serveCmd.Flags().Lookup("db-password"))
	_ = viper.BindPFlag("db.name", serveCmd.Flags().Lookup("db-name"))
	_ = viper.BindPFlag("db.sslmode", serveCmd.Flags().Lookup("db-sslmode"))
	_ = viper.BindPFlag("solcast.url", serveCmd.Flags().Lookup("solcast-url"))
	_ = viper.BindPFlag("solcast.api_key", serveCmd.Flags().Lookup("solcast-api-key"))
}

func runServe(_ *cobra.Command, _ []string) error {
	logger := GetLogger()
	logger.Info("starting solarcast service")

	// Create server configuration from viper
	config := &web.ServerConfig{
		Logger:         logger,
		HTTPPort:       viper.GetInt("http.port"),
		DBHost:         viper.GetString("db.host"),
		DBPort:         viper.GetInt("db.port"),
		DBUser:         viper.GetString("db.user"),
		DBPassword:     viper.GetString("db.password"),
		DBName:         viper.GetString("db.name"),
		DBSSLMode:      viper.GetString("db.sslmode"),
		SolcastBaseURL: viper.GetString("solcast.url"),
		SolcastAPIKey:  viper.GetString("solcast.api_key"),
	}

	// Create and run server
	server, err := web.NewServer(config)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		return err
	}

	logger.Info("server configuration",
		"http_port", config.HTTPPort,
		"db_host", config.DBHost,
		"db_port", config.DBPort,
		"db_name", config.DBName,
		"default_api_key_set", config.SolcastAPIKey != "",
	)

	if err := server.Run(context.Background()); err != nil {
		logger.Error("server error", "error", err)
		return err
	}

	logger.Info("server stopped")
	return nil
}
