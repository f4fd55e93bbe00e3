package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/felixgeelhaar/engram/internal/command"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show memory occupancy, goals, and mood",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		dispatch(command.Status{})
	},
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List registered tools",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		eng, _, done := openEngine()
		defer done()

		for _, def := range eng.Tools().List() {
			fmt.Printf("%-12s %s\n", def.Name, def.Description)
		}
	},
}

var calcCmd = &cobra.Command{
	Use:   "calc [expression]",
	Short: "Evaluate an arithmetic expression",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dispatch(command.Calc{Expression: strings.Join(args, " ")})
	},
}

var doCmd = &cobra.Command{
	Use:   "do [command...]",
	Short: "Run a free-text command",
	Long: `Do parses a single free-text command and executes it. Try
'engram do help' for the command list.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := command.Parse(strings.Join(args, " "))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		eng, _, done := openEngine()
		defer done()

		out, err := eng.Dispatch(context.Background(), c)
		if err != nil {
			done()
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Print(out)
	},
}

func init() {
	RootCmd.AddCommand(statusCmd)
	RootCmd.AddCommand(toolsCmd)
	RootCmd.AddCommand(calcCmd)
	RootCmd.AddCommand(doCmd)
}
