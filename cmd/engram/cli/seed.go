package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/felixgeelhaar/engram/internal/seed"
	"github.com/felixgeelhaar/engram/internal/ui"
	"github.com/spf13/cobra"
)

var seedCheckOnly bool

var seedCmd = &cobra.Command{
	Use:   "seed [file]",
	Short: "Bulk-load memories and goals from a seed file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if seedCheckOnly {
			checkSeed(args[0])
			return
		}

		f, err := seed.Load(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		eng, _, done := openEngine()
		defer done()

		report, err := eng.Seed(context.Background(), *f)
		if err != nil {
			done()
			fmt.Println(err)
			os.Exit(1)
		}
		for _, w := range report.Warnings {
			fmt.Printf("warning: %s\n", w)
		}
		fmt.Printf("seeded %d memories, %d goals\n", report.MemoriesAdded, report.GoalsAdded)
	},
}

// checkSeed lints a seed file without importing it. Only the store is
// opened, so the check works before an embedder is configured.
func checkSeed(path string) {
	f, err := seed.Load(path)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	s := getStore()
	defer s.Close()

	res := seed.New(loadEngineConfig(s).MaxGoals).Validate(*f)
	for _, w := range res.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	for _, e := range res.Errors {
		fmt.Printf("error: %s\n", e)
	}
	if !res.Valid {
		os.Exit(1)
	}
	fmt.Printf("ok: %d memories, %d goals\n", len(f.Memories), len(f.Goals))
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export memories and goals to a snapshot file",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		eng, _, done := openEngine()
		defer done()

		snap, err := eng.Export(context.Background())
		if err != nil {
			done()
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Printf("exported %s (%s)\n", snap.ID, snap.Path)
	},
}

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List exported snapshots",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		eng, _, done := openEngine()
		defer done()

		snaps, err := eng.Snapshots()
		if err != nil {
			done()
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Print(ui.RenderSnapshots(snaps))
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [id]",
	Short: "Show a snapshot's contents after verifying its digest",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		eng, _, done := openEngine()
		defer done()

		state, err := eng.ReadSnapshot(args[0])
		if err != nil {
			done()
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Printf("exported at %s\n", state.ExportedAt.Format("2006-01-02 15:04:05"))
		for _, m := range state.Memories {
			if m.Importance != nil {
				fmt.Printf("  [%.2f] %s\n", *m.Importance, m.Content)
			} else {
				fmt.Printf("  [----] %s\n", m.Content)
			}
		}
		for _, g := range state.Goals {
			fmt.Printf("  goal: %s\n", g)
		}
	},
}

func init() {
	RootCmd.AddCommand(seedCmd)
	RootCmd.AddCommand(exportCmd)
	RootCmd.AddCommand(snapshotsCmd)
	RootCmd.AddCommand(snapshotCmd)
	seedCmd.Flags().BoolVar(&seedCheckOnly, "check", false, "Validate without importing")
}
