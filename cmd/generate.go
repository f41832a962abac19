package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/groupgen/internal/utils"
	"github.com/sw33tLie/groupgen/pkg/generation"
	"github.com/sw33tLie/groupgen/pkg/generator"
	"github.com/sw33tLie/groupgen/pkg/group"
)

// generateCmd implements: groupgen generate <generator>...
var generateCmd = &cobra.Command{
	Use:   "generate <generator>...",
	Short: "Run generators and store the groups they produce",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := generationOptions(cmd)
		if err != nil {
			return err
		}
		return withService(cmd.Context(), func(svc *generation.Service) error {
			for _, name := range args {
				if err := svc.GenerateGroups(cmd.Context(), name, opts); err != nil {
					return fmt.Errorf("generating %s: %w", name, err)
				}
			}
			return nil
		})
	},
}

// generateAllCmd implements: groupgen generate-all
var generateAllCmd = &cobra.Command{
	Use:   "generate-all",
	Short: "Run every generator of the library, dependencies first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := generationOptions(cmd)
		if err != nil {
			return err
		}
		allOpts := generation.AllOptions{Options: opts}
		if f, _ := cmd.Flags().GetString("frequency"); f != "" {
			if allOpts.Frequency, err = generator.ParseFrequency(f); err != nil {
				return err
			}
		}
		return withService(cmd.Context(), func(svc *generation.Service) error {
			return svc.GenerateAllGroups(cmd.Context(), allOpts)
		})
	},
}

func generationOptions(cmd *cobra.Command) (generation.Options, error) {
	var opts generation.Options

	if cmd.Flags().Changed("timestamp") {
		ts, _ := cmd.Flags().GetInt64("timestamp")
		opts.Timestamp = &ts
	}
	if raw, _ := cmd.Flags().GetString("additional-data"); raw != "" {
		data, err := group.ParseAdditionalData(raw)
		if err != nil {
			return opts, err
		}
		opts.AdditionalData = data
	}
	opts.FirstGenerationOnly, _ = cmd.Flags().GetBool("first-generation-only")
	return opts, nil
}

// withService loads the library, takes the database write lock and hands a
// ready service to run.
func withService(ctx context.Context, run func(*generation.Service) error) error {
	lib, err := loadLibrary()
	if err != nil {
		return err
	}

	db, dbPath, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	lock, err := utils.NewDBLock(dbPath)
	if err != nil {
		return err
	}
	if err := lock.Lock(ctx); err != nil {
		return err
	}
	defer lock.Unlock()

	svc, err := newService(db, lib)
	if err != nil {
		return err
	}
	return run(svc)
}

func addGenerationFlags(cmd *cobra.Command) {
	cmd.Flags().Int64("timestamp", 0, "Generation timestamp in unix seconds (default now)")
	cmd.Flags().String("additional-data", "", "Extra accounts merged into every group: address=value,address,...")
	cmd.Flags().Bool("first-generation-only", false, "Skip generators that already ran once")
}

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(generateAllCmd)
	addGenerationFlags(generateCmd)
	addGenerationFlags(generateAllCmd)
	generateAllCmd.Flags().String("frequency", "", "Only run generators of this frequency: once, daily, weekly")
}
