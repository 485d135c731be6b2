package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stepguide/backend/internal/config"
	"github.com/stepguide/backend/internal/logging"
	"github.com/stepguide/backend/internal/store"
	"github.com/stepguide/backend/pkg/playback"
)

var playCmd = &cobra.Command{
	Use:   "play <workflow-id>",
	Short: "Play a stored workflow step by step in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(args[0])
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
}

func runPlay(id string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger := logging.NewLogger(cfg.Log.Level)

	fileStore, err := store.NewFileStore(cfg.Store.Dir, logger)
	if err != nil {
		return fmt.Errorf("initialize workflow store: %w", err)
	}

	wf, err := fileStore.Get(context.Background(), id)
	if err != nil {
		return err
	}

	fmt.Printf("Playing %q (%d steps). Commands: n(ext), p(rev), a(lign), s <n>, q(uit)\n", wf.Name, len(wf.Steps))

	runner := playback.NewRunner(wf.Steps, playback.WithOnChange(printState))
	runner.Start()
	defer runner.Stop()
	printState(runner.State())

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "n", "next":
			runner.Next()
		case "p", "prev":
			runner.Prev()
		case "a", "align":
			runner.ToggleAlign()
		case "s", "select":
			if len(fields) < 2 {
				fmt.Println("usage: s <step-number>")
				continue
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("usage: s <step-number>")
				continue
			}
			runner.SelectStep(n - 1)
		case "q", "quit":
			return scanner.Err()
		default:
			fmt.Println("commands: n, p, a, s <n>, q")
		}
	}
	return scanner.Err()
}

// printState renders one playback snapshot as a single line. It runs inside
// the runner's transition path, so it must not call back into the runner.
func printState(st playback.State) {
	line := fmt.Sprintf("step %d: %s", st.StepIndex+1, st.Step.Title)
	switch st.Timer {
	case playback.TimerRunning:
		line += fmt.Sprintf(" [%ds left]", st.Remaining)
	case playback.TimerExpired:
		line += " [time!]"
	}
	if st.Aligned && st.ActivePage > 0 {
		line += fmt.Sprintf(" (page %d)", st.ActivePage)
	}
	fmt.Println(line)
}
