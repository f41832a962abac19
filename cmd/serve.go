package cmd

import (
	"github.com/spf13/cobra"
	"github.com/sw33tLie/groupgen/internal/server"
	"github.com/sw33tLie/groupgen/internal/utils"
	"github.com/sw33tLie/groupgen/pkg/generator"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored groups over a read-only JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		listenAddr, _ := cmd.Flags().GetString("listen")
		user, _ := cmd.Flags().GetString("user")
		pass, _ := cmd.Flags().GetString("password")

		db, _, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		var lib *generator.Library
		if l, err := loadLibrary(); err == nil {
			lib = l
		} else {
			utils.Log.Warnf("Serving without a generator library: %v", err)
		}

		return server.New(db, lib, user, pass).Start(listenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
	serveCmd.Flags().String("user", "", "Basic auth username (auth disabled when empty)")
	serveCmd.Flags().String("password", "", "Basic auth password")
}
