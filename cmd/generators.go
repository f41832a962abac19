package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/groupgen/pkg/generation"
	"github.com/sw33tLie/groupgen/pkg/generator"
	"github.com/sw33tLie/groupgen/pkg/generators"
)

// generatorsCmd implements: groupgen generators
var generatorsCmd = &cobra.Command{
	Use:   "generators",
	Short: "List the generator library in execution order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := loadLibrary()
		if err != nil {
			return err
		}
		levels, err := generation.ComputeLevelOfDependencies(lib, lib.Names())
		if err != nil {
			return err
		}

		lastRuns := map[string]string{}
		if db, _, err := openDB(); err == nil {
			defer db.Close()
			for _, name := range lib.Names() {
				records, err := db.Generations().Search(context.Background(), generator.Search{GeneratorName: name, Latest: true})
				if err == nil && len(records) > 0 {
					lastRuns[name] = time.Unix(records[0].Timestamp, 0).UTC().Format(time.RFC3339)
				}
			}
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "GENERATOR\tLEVEL\tFREQUENCY\tDEPENDS ON\tLAST GENERATION\t")
		for _, l := range generation.SortByLevel(levels) {
			def, _ := lib.Get(l.Name)
			last := lastRuns[l.Name]
			if last == "" {
				last = "never"
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t\n", l.Name, l.Level, def.Frequency, strings.Join(def.DependsOn, ","), last)
		}
		w.Flush()

		fmt.Printf("\nAvailable kinds: %s\n", strings.Join(generators.Kinds(), ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generatorsCmd)
}
