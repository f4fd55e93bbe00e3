package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose bool
	jsonOut bool

	embedderName   string
	embedderModel  string
	embedderDim    int
	embedderPlugin string
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "engram",
	Short: "Importance-scored memory store",
	Long: `Engram keeps a bounded store of embedded memories that compete for
space by importance, decay when neglected, and strengthen when recalled.
Goals are tracked alongside, and a mood state shifts as operations
succeed or fail.`,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	RootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "JSON log output")
	RootCmd.PersistentFlags().StringVar(&embedderName, "embedder", "", "Embedding provider: hash, ollama, openai, gemini (default: configured)")
	RootCmd.PersistentFlags().StringVar(&embedderModel, "model", "", "Embedding model override")
	RootCmd.PersistentFlags().IntVar(&embedderDim, "dim", 0, "Embedding dimension override")
	RootCmd.PersistentFlags().StringVar(&embedderPlugin, "plugin", "", "Path to an embedder plugin binary")
}
