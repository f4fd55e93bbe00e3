package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/felixgeelhaar/engram/internal/command"
	"github.com/felixgeelhaar/engram/internal/ui"
	"github.com/spf13/cobra"
)

var (
	rememberImportance float64
	recallK            int
)

var rememberCmd = &cobra.Command{
	Use:   "remember [text]",
	Short: "Store a memory",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c := command.Remember{Content: strings.Join(args, " ")}
		if rememberImportance >= 0 {
			c.Importance = rememberImportance
			c.Weighted = true
		}
		dispatch(c)
	},
}

var recallCmd = &cobra.Command{
	Use:   "recall [query]",
	Short: "Retrieve memories related to a query",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dispatch(command.Recall{Query: strings.Join(args, " "), K: recallK})
	},
}

var forgetCmd = &cobra.Command{
	Use:   "forget [id]",
	Short: "Remove a memory by id",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dispatch(command.Forget{ID: args[0]})
	},
}

var memoriesCmd = &cobra.Command{
	Use:   "memories",
	Short: "List all stored memories",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		eng, _, done := openEngine()
		defer done()
		fmt.Print(ui.RenderItems(eng.Memories()))
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show memory occupancy",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		dispatch(command.MemoryStats{})
	},
}

var decayCmd = &cobra.Command{
	Use:   "decay",
	Short: "Run a decay pass over stored importance",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		dispatch(command.Decay{})
	},
}

// dispatch runs one parsed command against a freshly opened engine and
// prints its output.
func dispatch(c command.Command) {
	eng, _, done := openEngine()
	defer done()

	out, err := eng.Dispatch(context.Background(), c)
	if err != nil {
		done()
		fmt.Println(err)
		os.Exit(1)
	}
	fmt.Print(out)
}

func init() {
	RootCmd.AddCommand(rememberCmd)
	RootCmd.AddCommand(recallCmd)
	RootCmd.AddCommand(forgetCmd)
	RootCmd.AddCommand(memoriesCmd)
	RootCmd.AddCommand(statsCmd)
	RootCmd.AddCommand(decayCmd)
	rememberCmd.Flags().Float64VarP(&rememberImportance, "importance", "i", -1, "Initial importance in [0,1] (default: configured baseline)")
	recallCmd.Flags().IntVarP(&recallK, "k", "k", 0, "Number of memories to return (default: configured)")
}
