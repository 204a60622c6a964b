package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"subsync/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent synchronization runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.Paths.HistoryDB)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			if jsonOutput {
				return writeJSON(cmd, historyViews(entries))
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				offset := formatOffset(e.Offset)
				if e.Manual {
					offset += " (manual)"
				}
				score := "-"
				if !e.Manual && e.Threshold > 0 {
					score = fmt.Sprintf("%d/%d", e.Score, e.Threshold)
				}
				output := filepath.Base(e.OutputPath)
				if e.DryRun {
					output += " (dry run)"
				}
				rows = append(rows, []string{
					e.StartedAt.Local().Format("2006-01-02 15:04:05"),
					e.Status,
					offset,
					score,
					filepath.Base(e.InputPath),
					output,
				})
			}
			fmt.Fprintln(out, renderTable([]string{"Started", "Status", "Offset", "Score", "Input", "Output"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight}))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	addJSONFlag(cmd, &jsonOutput, "Print JSON instead of a table")
	return cmd
}

type historyView struct {
	ID              string `json:"id"`
	StartedAt       string `json:"started_at"`
	FinishedAt      string `json:"finished_at"`
	Reference       string `json:"reference"`
	Input           string `json:"input"`
	Output          string `json:"output"`
	ReferenceOrigin string `json:"reference_origin"`
	InputOrigin     string `json:"input_origin"`
	OffsetMS        int64  `json:"offset_ms"`
	Score           int    `json:"score"`
	Threshold       int    `json:"threshold"`
	Matched         bool   `json:"matched"`
	Manual          bool   `json:"manual"`
	DryRun          bool   `json:"dry_run"`
	Status          string `json:"status"`
	Error           string `json:"error,omitempty"`
}

func historyViews(entries []history.Entry) []historyView {
	views := make([]historyView, 0, len(entries))
	for _, e := range entries {
		views = append(views, historyView{
			ID:              e.ID,
			StartedAt:       e.StartedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			FinishedAt:      e.FinishedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			Reference:       e.ReferencePath,
			Input:           e.InputPath,
			Output:          e.OutputPath,
			ReferenceOrigin: e.ReferenceOrigin,
			InputOrigin:     e.InputOrigin,
			OffsetMS:        e.Offset.Milliseconds(),
			Score:           e.Score,
			Threshold:       e.Threshold,
			Matched:         e.Matched,
			Manual:          e.Manual,
			DryRun:          e.DryRun,
			Status:          e.Status,
			Error:           e.Error,
		})
	}
	return views
}

