package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"quizbuzzer/lib/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change the console settings",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default settings",
	RunE:  runConfigInit,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tunable values",
	RunE:  runConfigList,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a tunable value",
	Long: `Changes one tunable value and writes it to the config file. A running
console picks the change up from the file.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var forceInit bool

func init() {
	configInitCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configListCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(cfgPath); err == nil && !forceInit {
		return fmt.Errorf("config file already exists: %s", cfgPath)
	}
	if err := config.WriteDefault(cfgPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", cfgPath)
	return nil
}

func runConfigList(cmd *cobra.Command, args []string) error {
	store, _, _, err := loadConfig()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	for _, d := range config.Definitions {
		fmt.Fprintf(w, "%-15s %4d %-4s %-13s (%d..%d, default %d)\n",
			d.Key, store.Value(d.Key), d.Unit, d.Name, d.Min, d.Max, d.Default)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	value, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("value %q is not a number", args[1])
	}
	store, _, _, err := loadConfig()
	if err != nil {
		return err
	}
	if err := store.SetValue(args[0], value); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %d\n", args[0], value)
	return nil
}
