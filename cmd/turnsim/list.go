package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/turnsim/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available scenarios",
	Long:  `Shows a list of all scenarios built into turnsim.`,
	Args:  cobra.NoArgs,
	Run:   runList,
}

func runList(cmd *cobra.Command, _ []string) {
	out := cmd.OutOrStdout()
	scenarios := registry.List()

	if len(scenarios) == 0 {
		fmt.Fprintln(out, "No scenarios available.")
		return
	}

	fmt.Fprintln(out, "Available scenarios:")
	fmt.Fprintln(out)

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	maxTitleLen := 5
	for _, s := range scenarios {
		maxIDLen = max(maxIDLen, len(s.ID))
		maxTitleLen = max(maxTitleLen, len(s.Title))
	}

	fmt.Fprintf(out, "  %-*s  %-*s  %7s  %6s\n", maxIDLen, "ID", maxTitleLen, "Title", "Enemies", "Frames")
	fmt.Fprintf(out, "  %-*s  %-*s  %7s  %6s\n", maxIDLen, "--", maxTitleLen, "-----", "-------", "------")

	for _, s := range scenarios {
		fmt.Fprintf(out, "  %-*s  %-*s  %7d  %6d\n", maxIDLen, s.ID, maxTitleLen, s.Title, s.Enemies, s.Frames)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Run 'turnsim run <id>' or 'turnsim watch <id>' to start one.")
}
