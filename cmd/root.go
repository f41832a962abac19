package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/groupgen/internal/utils"
	"github.com/sw33tLie/groupgen/pkg/providers/hive"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `	                                                        
	  __ _ _ __ ___  _   _ _ __   __ _  ___ _ __  
	 / _' | '__/ _ \| | | | '_ \ / _' |/ _ \ '_ \ 
	| (_| | | | (_) | |_| | |_) | (_| |  __/ | | |
	 \__, |_|  \___/ \__,_| .__/ \__, |\___|_| |_|
	 |___/                |_|    |___/            

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "groupgen",
	Short: "Generates and stores groups of accounts.",
	Long: LOGO + `groupgen runs a library of group generators in dependency order, enriches
the groups they produce and stores every version of them.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.groupgen.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().String("dbpath", "", "Path to SQLite DB file (default is $HOME/.config/groupgen/groupgen.sqlite)")
	rootCmd.PersistentFlags().String("library", "", "Generator library YAML file")

	viper.BindPFlag("db.path", rootCmd.PersistentFlags().Lookup("dbpath"))
	viper.BindPFlag("library", rootCmd.PersistentFlags().Lookup("library"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".groupgen")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()
	viper.BindEnv("hive.api_key", "HIVE_API_KEY")

	viper.SetDefault("hive.api_key", "")
	viper.SetDefault("hive.url", hive.DefaultURL)
	viper.SetDefault("hive.concurrency", hive.DefaultConcurrency)
	viper.SetDefault("hive.retries", 2)
	viper.SetDefault("hive.rps", 0)
	viper.SetDefault("library", "")
	viper.SetDefault("db.path", "")

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && cfgFile == "" {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.groupgen.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				utils.Log.Debugf("Could not create config file: %s", err)
			}
		}
	}

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	if err := utils.SetLogLevel(levelString); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
