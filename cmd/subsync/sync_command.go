package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"subsync/internal/workflow"
)

type syncOptions struct {
	output       string
	dryRun       bool
	requireMatch bool
	offset       time.Duration
	inputLang    string
	refLang      string
	jsonOutput   bool
}

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var opts syncOptions

	cmd := &cobra.Command{
		Use:   "sync <reference> [input]",
		Short: "Shift a subtitle track onto a reference track",
		Long: `Shift a subtitle track onto a reference track.

<reference> is a subtitle file or a media container whose embedded subtitle
stream in the reference language is used. [input] is the subtitle file (or
container) to shift. Without [input], both tracks are downloaded from
OpenSubtitles for the <reference> video.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if lang := strings.TrimSpace(opts.inputLang); lang != "" {
				cfg.Subtitles.InputLanguage = lang
			}
			if lang := strings.TrimSpace(opts.refLang); lang != "" {
				cfg.Subtitles.ReferenceLanguage = lang
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			runner, closer, err := workflow.Build(cfg, logger)
			if err != nil {
				return err
			}
			defer closer()

			req := workflow.Request{
				ReferencePath: args[0],
				OutputPath:    opts.output,
				DryRun:        opts.dryRun,
				RequireMatch:  opts.requireMatch,
			}
			if len(args) > 1 {
				req.InputPath = args[1]
			}
			if cmd.Flags().Changed("offset") {
				offset := opts.offset
				req.ManualOffset = &offset
			}

			result, err := runner.Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return writeJSON(cmd, newSyncSummary(result))
			}
			printSyncSummary(cmd.OutOrStdout(), result, shouldColorize(cmd.OutOrStdout()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output path (default: next to the input with the configured suffix)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Compute the offset without writing output")
	cmd.Flags().BoolVar(&opts.requireMatch, "require-match", false, "Fail instead of writing an unshifted track when no cue matches")
	cmd.Flags().DurationVar(&opts.offset, "offset", 0, "Apply this signed offset (e.g. -2.5s) instead of matching")
	cmd.Flags().StringVar(&opts.inputLang, "input-lang", "", "Language of the input track (overrides subtitles.input_language)")
	cmd.Flags().StringVar(&opts.refLang, "ref-lang", "", "Language of the reference track (overrides subtitles.reference_language)")
	addJSONFlag(cmd, &opts.jsonOutput, "Print the run summary as JSON")
	return cmd
}

type syncSummary struct {
	RunID           string `json:"run_id"`
	Reference       string `json:"reference"`
	ReferenceOrigin string `json:"reference_origin"`
	Input           string `json:"input"`
	InputOrigin     string `json:"input_origin"`
	Output          string `json:"output"`
	OffsetMS        int64  `json:"offset_ms"`
	Score           int    `json:"score"`
	Threshold       int    `json:"threshold"`
	Matched         bool   `json:"matched"`
	Manual          bool   `json:"manual"`
	LowConfidence   bool   `json:"low_confidence"`
	Written         bool   `json:"written"`
	MarkersRemoved  int    `json:"markers_removed"`
	NegativeCues    int    `json:"negative_cues"`
	Status          string `json:"status"`
}

func newSyncSummary(result workflow.Result) syncSummary {
	return syncSummary{
		RunID:           result.RunID,
		Reference:       result.Reference.Path,
		ReferenceOrigin: string(result.Reference.Origin),
		Input:           result.Input.Path,
		InputOrigin:     string(result.Input.Origin),
		Output:          result.OutputPath,
		OffsetMS:        result.Offset.Milliseconds(),
		Score:           result.Alignment.Score,
		Threshold:       result.Alignment.Threshold,
		Matched:         result.Alignment.Matched,
		Manual:          result.Manual,
		LowConfidence:   result.LowConfidence(),
		Written:         result.Written,
		MarkersRemoved:  result.MarkersFound,
		NegativeCues:    result.NegativeCues,
		Status:          result.Status,
	}
}

func printSyncSummary(out io.Writer, result workflow.Result, colorize bool) {
	lines := renderSectionHeader("Synchronization", colorize)
	lines = append(lines,
		renderStatusLine("Reference", statusInfo, fmt.Sprintf("%s (%s)", result.Reference.Path, result.Reference.Origin), colorize),
		renderStatusLine("Input", statusInfo, fmt.Sprintf("%s (%s)", result.Input.Path, result.Input.Origin), colorize),
	)
	if result.MarkersFound > 0 {
		lines = append(lines, renderStatusLine("Markers removed", statusInfo, fmt.Sprintf("%d", result.MarkersFound), colorize))
	}

	switch {
	case result.Manual:
		lines = append(lines, renderStatusLine("Offset", statusOK, formatOffset(result.Offset)+" (manual)", colorize))
	case result.Alignment.Matched:
		lines = append(lines, renderStatusLine("Offset", statusOK,
			fmt.Sprintf("%s (score %d > %d)", formatOffset(result.Offset), result.Alignment.Score, result.Alignment.Threshold), colorize))
	default:
		lines = append(lines, renderStatusLine("Offset", statusWarn,
			fmt.Sprintf("low confidence, timings unchanged (best score %d, threshold %d)", result.Alignment.Score, result.Alignment.Threshold), colorize))
	}
	if result.NegativeCues > 0 {
		lines = append(lines, renderStatusLine("Negative cues", statusWarn,
			fmt.Sprintf("%d cues clamped to 00:00:00", result.NegativeCues), colorize))
	}

	if result.Written {
		lines = append(lines, renderStatusLine("Output", statusOK, result.OutputPath, colorize))
	} else {
		lines = append(lines, renderStatusLine("Output", statusInfo, result.OutputPath+" (dry run, not written)", colorize))
	}
	fmt.Fprintln(out, strings.Join(lines, "\n"))
}
