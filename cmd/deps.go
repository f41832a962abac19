package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"github.com/sw33tLie/groupgen/internal/utils"
	"github.com/sw33tLie/groupgen/pkg/generation"
	"github.com/sw33tLie/groupgen/pkg/generator"
	"github.com/sw33tLie/groupgen/pkg/generators"
	"github.com/sw33tLie/groupgen/pkg/providers/hive"
	"github.com/sw33tLie/groupgen/pkg/resolver"
	"github.com/sw33tLie/groupgen/pkg/storage"
)

// openDB opens the configured database, creating its directory if needed.
func openDB() (*storage.DB, string, error) {
	dbPath, err := utils.GetAbsDBPath(viper.GetString("db.path"))
	if err != nil {
		return nil, "", err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, "", fmt.Errorf("could not create database directory: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, "", fmt.Errorf("could not open database %s: %w", dbPath, err)
	}
	return db, dbPath, nil
}

// newHiveProvider returns nil when no API key is configured.
func newHiveProvider() *hive.Provider {
	apiKey := viper.GetString("hive.api_key")
	if apiKey == "" {
		return nil
	}
	return hive.NewProvider(hive.Config{
		APIKey:            apiKey,
		URL:               viper.GetString("hive.url"),
		Concurrency:       viper.GetInt("hive.concurrency"),
		Retries:           viper.GetInt("hive.retries"),
		RequestsPerSecond: viper.GetFloat64("hive.rps"),
		OnProgress: func(cluster string, downloaded int) {
			fmt.Fprintf(os.Stderr, "\rdownloading %s influencers (%d)", cluster, downloaded)
		},
	})
}

func loadLibrary() (*generator.Library, error) {
	path := viper.GetString("library")
	if path == "" {
		return nil, fmt.Errorf("no generator library configured, use --library or set library in the config file")
	}
	return generators.LoadLibrary(path, generators.Deps{Hive: newHiveProvider()})
}

func newResolver() resolver.Resolver {
	return resolver.NewGlobal().Register("twitter", resolver.TwitterResolver{})
}

func newService(db *storage.DB, lib *generator.Library) (*generation.Service, error) {
	return generation.NewService(generation.Config{
		Library:        lib,
		GroupStore:     db.Groups(),
		GeneratorStore: db.Generations(),
		Resolver:       newResolver(),
		Log:            utils.Log,
	})
}
