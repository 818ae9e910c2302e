package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/doidoi-app/doidoi-cli/internal/config"
	"github.com/doidoi-app/doidoi-cli/internal/logging"
	"github.com/doidoi-app/doidoi-cli/internal/output"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile        string
	jsonOutputFlag bool
	yamlOutputFlag bool
	quiet          bool
	verbose        bool
)

var rootCmd = &cobra.Command{
	Use:   "doidoi",
	Short: "DoiDoi smart garden CLI",
	Long: `Register pumps, lights and sensors with the DoiDoi backend.

Get started:
  doidoi auth set-token        Store your access token
  doidoi device types          List the device types you can add
  doidoi device add -i         Add a device with the interactive form`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := viper.GetString("log_level")
		if IsVerbose() {
			level = "debug"
		}
		return logging.Initialize(level)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/doidoi/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutputFlag, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&yamlOutputFlag, "yaml", "y", false, "Output in YAML format")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output for debugging")

	// Bind flags to viper (errors only occur if flag doesn't exist, which is a programmer error)
	_ = viper.BindPFlag("output.json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("output.yaml", rootCmd.PersistentFlags().Lookup("yaml"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	viper.SetDefault("api_url", config.Defaults.APIURL)
	viper.SetDefault("mqtt.topic", config.Defaults.MQTTTopic)
	viper.SetDefault("mqtt.client_id", config.Defaults.MQTTClientID)
}

func initConfig() {
	// A .env file in the working directory seeds the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Warning: could not load .env:", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		configDir, err := config.GetConfigDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Warning: could not determine config directory:", err)
			return
		}

		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Environment variables (DOIDOI_API_URL, DOIDOI_MQTT_BROKER, ...)
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// Helper functions for commands to use
func IsJSON() bool {
	return viper.GetBool("output.json")
}

func IsYAML() bool {
	return viper.GetBool("output.yaml")
}

func IsQuiet() bool {
	return viper.GetBool("quiet")
}

func IsVerbose() bool {
	return viper.GetBool("verbose")
}

// structured prints data in the requested machine format.
// It reports false when neither --json nor --yaml was given.
func structured(data interface{}) (bool, error) {
	switch {
	case IsJSON():
		return true, output.JSON(data)
	case IsYAML():
		return true, output.YAML(data)
	}
	return false, nil
}
