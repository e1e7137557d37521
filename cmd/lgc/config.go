package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Negoth/linear-github-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage lgc configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		path, err := config.DefaultPath()
		if err != nil {
			FatalError("%v", err)
		}
		if err := config.WriteStarter(path); err != nil {
			FatalError("%v", err)
		}
		fmt.Printf("%s Wrote %s\n", okMark(), path)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		path, err := config.DefaultPath()
		if err != nil {
			FatalError("%v", err)
		}
		fmt.Println(path)
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}
