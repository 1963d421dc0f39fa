// Package main is the entry point for the convert-json-to-parquet CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "convert-json-to-parquet",
	Short: "Convert delimited JSON records in object storage to Parquet",
	Long: `convert-json-to-parquet reads every JSON record under an input location
(s3://bucket/prefix or a local path), infers a schema, and writes the records
as Parquet part files under an output location.

Every flag can also be set in convert-json-to-parquet.yaml or through an
environment variable prefixed with CONVERT_ (for example CONVERT_INPUT_LOC).`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./convert-json-to-parquet.yaml or ~/.config/convert-json-to-parquet/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "human-readable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("convert-json-to-parquet")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "convert-json-to-parquet"))
		}
	}

	viper.SetEnvPrefix("CONVERT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the process logger: JSON to stderr, or a development
// console logger when --verbose is set.
func newLogger(cmd *cobra.Command) (*zap.SugaredLogger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger.Sugar(), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
