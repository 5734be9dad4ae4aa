package main

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile      string
	envFile      string
	outputFormat string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "ocr-monitor-mcp",
	Short: "OCR with per-character monitor buffers, served over MCP",
	Long: `ocr-monitor-mcp recognizes text with Tesseract, records every recognized
character in a fixed-capacity monitor buffer and rebuilds words and lines
from that buffer.

Run without a subcommand (or with "serve") it speaks the Model Context
Protocol on stdin/stdout. The recognize and reconstruct commands expose the
same pipeline on the command line.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setOutputFormat(outputFormat)
	},
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.ocr-monitor-mcp/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&envFile, "env-file", ".env", "dotenv file loaded before configuration",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "", "override log_level: debug, info, warn or error",
	)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(recognizeCmd)
	rootCmd.AddCommand(reconstructCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
