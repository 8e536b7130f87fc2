package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"quizbuzzer/lib/input"
	"quizbuzzer/lib/soundboard"
)

var indexCmd = &cobra.Command{
	Use:   "index [root]",
	Short: "Print the soundboard pages and their quick-access sequences",
	Long: `Indexes the soundboard directory the same way the console does and
prints every page, its quick-access button sequence and its sounds. The
sound root defaults to the one in the config file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	_, settings, log, err := loadConfig()
	if err != nil {
		return err
	}
	root := settings.SoundRoot
	if len(args) == 1 {
		root = args[0]
	}

	cat, err := soundboard.Build(os.DirFS(root), settings.SoundboardDir, len(input.Selectors), log)
	if err != nil {
		return err
	}
	printCatalog(cmd.OutOrStdout(), cat)
	return nil
}

func sequenceLabel(a soundboard.Address) string {
	label := ""
	for i, d := range a.Digits() {
		if i > 0 {
			label += " "
		}
		label += input.Selectors[d].String()
	}
	return label
}

func printCatalog(w io.Writer, cat *soundboard.Catalog) {
	if !cat.Addressable {
		fmt.Fprintf(w, "%d pages exceed quick access capacity\n\n", cat.PageCount())
	}
	for i, p := range cat.Pages {
		name := p.Name
		if name == "" {
			name = "(empty)"
		}
		fmt.Fprintf(w, "%2d  %-14s %s\n", i+1, sequenceLabel(p.Address), name)
		for slot, s := range p.Sounds {
			if s.Empty() {
				continue
			}
			fmt.Fprintf(w, "      %-7s %s\n", input.Selectors[slot].String(), s.Description())
		}
	}
}
