package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stepguide/backend/internal/config"
	"github.com/stepguide/backend/internal/logging"
	"github.com/stepguide/backend/internal/store"
	"github.com/stepguide/backend/internal/workflow"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the workflow store with sample workflows",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed()
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed() error {
	ctx := context.Background()

	// Load config
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger := logging.NewLogger(cfg.Log.Level)

	fileStore, err := store.NewFileStore(cfg.Store.Dir, logger)
	if err != nil {
		return fmt.Errorf("initialize workflow store: %w", err)
	}

	// 1. Check for existing workflows to prevent duplicates
	existing, err := fileStore.List(ctx)
	if err != nil {
		return fmt.Errorf("list existing workflows: %w", err)
	}
	existingMap := make(map[string]bool)
	for _, item := range existing {
		existingMap[item.Name] = true
	}

	// 2. Create seed workflows. The payloads go through the same
	// normalization path as generated and uploaded ones.
	samples := []map[string]any{
		{
			"name": "Espresso machine first setup",
			"steps": []any{
				map[string]any{"title": "Rinse the water tank", "description": "Cold water only, no detergent.", "page": float64(3)},
				map[string]any{"title": "Fill the tank to the MAX line", "page": float64(3)},
				map[string]any{"title": "Prime the boiler", "description": "Run an empty shot until water flows steadily.", "durationSec": float64(45), "page": float64(4)},
				map[string]any{"title": "Flush the group head", "durationSec": float64(30), "page": float64(5)},
			},
		},
		{
			"name": "Bookshelf assembly",
			"steps": []any{
				map[string]any{"title": "Lay out the side panels", "page": float64(2)},
				map[string]any{"title": "Attach the cam locks", "description": "Hand-tighten only at this stage.", "page": float64(2)},
				map[string]any{"title": "Mount the back panel", "page": float64(4)},
				map[string]any{"title": "Let the glue set", "durationSec": float64(600), "page": float64(5)},
				map[string]any{"title": "Tighten all cam locks", "page": float64(6)},
			},
		},
		{
			"name": "Smoke detector battery change",
			"steps": []any{
				map[string]any{"title": "Twist the detector off its base"},
				map[string]any{"title": "Replace the 9V battery"},
				map[string]any{"title": "Hold the test button", "description": "A loud beep confirms the new battery.", "durationSec": float64(5)},
				map[string]any{"title": "Remount the detector"},
			},
		},
	}

	for _, sample := range samples {
		name, _ := sample["name"].(string)
		if existingMap[name] {
			logger.Info("skipping existing workflow", "name", name)
			continue
		}

		wf, err := workflow.Normalize(sample, nil, "")
		if err != nil {
			return fmt.Errorf("normalize sample %q: %w", name, err)
		}
		if _, err := fileStore.Put(ctx, wf); err != nil {
			return fmt.Errorf("seed workflow %q: %w", name, err)
		}
		logger.Info("seeded workflow", "name", name, "workflow_id", wf.WorkflowID, "steps", len(wf.Steps))
	}

	logger.Info("seeding complete")
	return nil
}
