package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"sportsdl/internal/config"
	"sportsdl/internal/history"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past extractions",
	Args:  cobra.NoArgs,
	RunE:  historyRun,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all history entries",
	Args:  cobra.NoArgs,
	RunE:  historyClearRun,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Number of entries to show (0 for all)")
	historyCmd.AddCommand(historyClearCmd)
}

func openHistory() (*history.Store, error) {
	path, err := config.HistoryPath()
	if err != nil {
		return nil, err
	}
	return history.Open(path)
}

func historyRun(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}
	defer store.Close()

	entries, err := store.List(cmd.Context(), flagHistoryLimit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No history entries found.")
		return nil
	}

	for i, line := range history.FormatForDisplay(entries) {
		fmt.Println(line)
		fmt.Printf("    %s\n", entries[i].WebpageURL)
	}
	return nil
}

func historyClearRun(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}
	defer store.Close()

	if err := store.Clear(cmd.Context()); err != nil {
		return err
	}
	fmt.Println("History cleared.")
	return nil
}
