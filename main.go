package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "zatigwera",
	Short: "Funeral records registry for community administrators and reporters",
	Long: `zatigwera runs the funeral records web application and its
maintenance tasks: schema migrations, bootstrapping users and exporting
records.

Configuration comes from an optional YAML file (--config) overridden by
environment variables such as PORT, DATABASE_PATH and JWT_SECRET.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.AddCommand(serveCmd, migrateCmd, userCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
