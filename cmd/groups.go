package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/groupgen/pkg/group"
)

// groupsCmd implements: groupgen groups
var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List the latest version of every stored group",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		groups, err := db.ListLatestGroups(context.Background())
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			fmt.Println("No groups in the database.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "GROUP\tGENERATED BY\tVALUE TYPE\tACCOUNTS\tVERSIONS\tLATEST\t")
		for _, g := range groups {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t\n", g.Name, g.GeneratedBy, g.ValueType, g.AccountsNumber, g.Versions, time.Unix(g.Timestamp, 0).UTC().Format(time.RFC3339))
		}
		w.Flush()
		return nil
	},
}

// groupsShowCmd implements: groupgen groups show <name>
var groupsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a stored group as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		search := group.Search{GroupName: args[0], Latest: true}
		if cmd.Flags().Changed("timestamp") {
			search.Latest = false
			search.Timestamp, _ = cmd.Flags().GetInt64("timestamp")
		}

		groups, err := db.Groups().Search(context.Background(), search)
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			return fmt.Errorf("group %s not found", args[0])
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(groups[0])
	},
}

func init() {
	rootCmd.AddCommand(groupsCmd)
	groupsCmd.AddCommand(groupsShowCmd)
	groupsShowCmd.Flags().Int64("timestamp", 0, "Version to print (default latest)")
}
