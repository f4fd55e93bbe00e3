package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/engram/internal/maintain"
	"github.com/spf13/cobra"
)

var maintainInterval time.Duration

var maintainCmd = &cobra.Command{
	Use:   "maintain",
	Short: "Run periodic decay passes until interrupted",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		eng, obs, done := openEngine()
		defer done()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		m := maintain.New(eng, obs, maintainInterval)
		if err := m.Run(ctx); err != nil {
			done()
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	RootCmd.AddCommand(maintainCmd)
	maintainCmd.Flags().DurationVar(&maintainInterval, "interval", maintain.DefaultInterval, "Time between decay passes")
}
