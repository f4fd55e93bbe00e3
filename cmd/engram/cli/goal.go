package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/engram/internal/command"
	"github.com/spf13/cobra"
)

var goalPriority int

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage goals",
}

var goalAddCmd = &cobra.Command{
	Use:   "add [text]",
	Short: "Add an active goal",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		eng, _, done := openEngine()
		defer done()

		g, err := eng.AddGoal(context.Background(), strings.Join(args, " "), goalPriority)
		if err != nil {
			done()
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Printf("goal %d added\n", g.ID)
	},
}

var goalProgressCmd = &cobra.Command{
	Use:   "progress [id] [value]",
	Short: "Set a goal's progress in [0,1]",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Printf("invalid goal id %q\n", args[0])
			os.Exit(1)
		}
		value, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			fmt.Printf("invalid progress %q\n", args[1])
			os.Exit(1)
		}
		dispatch(command.Progress{GoalID: id, Value: value})
	},
}

var goalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active and completed goals",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		dispatch(command.Goals{})
	},
}

func init() {
	RootCmd.AddCommand(goalCmd)
	goalCmd.AddCommand(goalAddCmd)
	goalCmd.AddCommand(goalProgressCmd)
	goalCmd.AddCommand(goalListCmd)
	goalAddCmd.Flags().IntVarP(&goalPriority, "priority", "p", 1, "Goal priority (higher sorts first)")
}
