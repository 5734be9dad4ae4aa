package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/ocr-monitor-mcp/internal/monitor"
	"github.com/ironsheep/ocr-monitor-mcp/internal/server"
)

var (
	reconChars    bool
	reconTextOnly bool
)

var reconstructCmd = &cobra.Command{
	Use:   "reconstruct <snapshot.json|->",
	Short: "Rebuild words and lines from a saved monitor buffer snapshot",
	Long: `Rebuild words and lines from a snapshot written by "recognize --snapshot".
Use - to read the snapshot from stdin.

A snapshot whose header disagrees with its events is rejected and nothing is
printed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := readSnapshot(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}

		res, err := server.Reconstruct(snap, reconChars)
		if err != nil {
			return err
		}

		if reconTextOnly {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), res.Text)
			return err
		}
		return output(cmd.OutOrStdout(), res)
	},
}

func init() {
	reconstructCmd.Flags().BoolVar(&reconChars, "chars", false, "include per-character events")
	reconstructCmd.Flags().BoolVar(&reconTextOnly, "text", false, "print only the reconstructed text")
}

func readSnapshot(stdin io.Reader, path string) (monitor.Snapshot, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return monitor.Snapshot{}, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap monitor.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return monitor.Snapshot{}, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return snap, nil
}
