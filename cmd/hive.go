package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var hiveCmd = &cobra.Command{
	Use:   "hive",
	Short: "Query the Hive influencer API",
}

// hiveClusterCmd implements: groupgen hive cluster <name>
var hiveClusterCmd = &cobra.Command{
	Use:   "cluster <name>",
	Short: "Print the best ranked accounts of a cluster, one per line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider := newHiveProvider()
		if provider == nil {
			return fmt.Errorf("hive.api_key is not set (config file or HIVE_API_KEY)")
		}
		maxItems, _ := cmd.Flags().GetInt("max")
		minFollowers, _ := cmd.Flags().GetInt("min-followers")

		count := 0
		for account, err := range provider.InfluencersFromCluster(cmd.Context(), args[0], maxItems, minFollowers) {
			if err != nil {
				fmt.Fprintln(os.Stderr)
				return err
			}
			count++
			fmt.Printf("%d\t%s\t%d\n", account.Rank, account.ScreenName, account.FollowersCount)
		}
		fmt.Fprintf(os.Stderr, "\n%d accounts\n", count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hiveCmd)
	hiveCmd.AddCommand(hiveClusterCmd)
	hiveClusterCmd.Flags().Int("max", 100, "Maximum rank to fetch")
	hiveClusterCmd.Flags().Int("min-followers", 0, "Minimum followers count")
}
