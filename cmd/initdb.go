package main

import (
	"context"
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gridwatch/solarcast/internal/store"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Migrate the schema and seed the initial site",
	Long: `Migrate the database schema and seed the initial monitored site.
With --demo N, additionally registers N generated demo sites.`,
	RunE: runInitDB,
}

func init() {
	rootCmd.AddCommand(initDBCmd)

	initDBCmd.Flags().String("db-host", "localhost", "PostgreSQL host")
	initDBCmd.Flags().Int("db-port", 5432, "PostgreSQL port")
	initDBCmd.Flags().String("db-user", "postgres", "PostgreSQL user")
	initDBCmd.Flags().String("db-password", "", "PostgreSQL password")
	initDBCmd.Flags().String("db-name", "solarcast", "PostgreSQL database name")
	initDBCmd.Flags().String("db-sslmode", "disable", "PostgreSQL SSL mode")
	initDBCmd.Flags().Int("demo", 0, "number of generated demo sites to register")

	_ = viper.BindPFlag("db.host", initDBCmd.Flags().Lookup("db-host"))
	_ = viper.BindPFlag("db.port", initDBCmd.Flags().Lookup("db-port"))
	_ = viper.BindPFlag("db.user", initDBCmd.Flags().Lookup("db-user"))
	_ = viper.BindPFlag("db.password", initDBCmd.Flags().Lookup("db-password"))
	_ = viper.BindPFlag("db.name", initDBCmd.Flags().Lookup("db-name"))
	_ = viper.BindPFlag("db.sslmode", initDBCmd.Flags().Lookup("db-sslmode"))
	_ = viper.BindPFlag("initdb.demo", initDBCmd.Flags().Lookup("demo"))
}

func runInitDB(_ *cobra.Command, _ []string) error {
	logger := GetLogger()
	logger.Info("initializing database")

	db, err := store.NewDB(&store.DBConfig{
		Logger:   logger,
		Host:     viper.GetString("db.host"),
		Port:     viper.GetInt("db.port"),
		User:     viper.GetString("db.user"),
		Password: viper.GetString("db.password"),
		DBName:   viper.GetString("db.name"),
		SSLMode:  viper.GetString("db.sslmode"),
	})
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		return err
	}
	defer func() {
		if err := store.CloseDB(db, logger); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	locations, err := store.NewLocationStore(db, logger)
	if err != nil {
		return err
	}

	ctx := context.Background()

	// Seed the initial monitored site when the registry is still empty.
	existing, err := locations.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		seed := store.Location{
			Name:           "Solar_One_Plant",
			Latitude:       7.976510,
			Longitude:      81.236602,
			GridSubstation: "Polonnaruwa GSS",
			FeederNumber:   "Feeder_01",
		}
		if err := locations.Create(ctx, &seed); err != nil {
			return fmt.Errorf("failed to seed initial site: %w", err)
		}
		logger.Info("seeded initial site", "location_id", seed.ID, "name", seed.Name)
	} else {
		logger.Info("registry already populated, skipping initial seed", "locations", len(existing))
	}

	// Generated demo sites, if requested.
	demo := viper.GetInt("initdb.demo")
	for i := 0; i < demo; i++ {
		site := store.Location{
			Name:           fmt.Sprintf("%s_Solar_Plant", gofakeit.City()),
			Latitude:       gofakeit.Latitude(),
			Longitude:      gofakeit.Longitude(),
			GridSubstation: fmt.Sprintf("%s GSS", gofakeit.City()),
			FeederNumber:   fmt.Sprintf("Feeder_%02d", gofakeit.Number(1, 40)),
		}
		if err := locations.Create(ctx, &site); err != nil {
			return fmt.Errorf("failed to seed demo site: %w", err)
		}
	}
	if demo > 0 {
		logger.Info("seeded demo sites", "count", demo)
	}

	logger.Info("database initialized")
	return nil
}
