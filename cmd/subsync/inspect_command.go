package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"subsync/internal/media/ffprobe"
	"subsync/internal/services"
	"subsync/internal/subtitles"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "inspect <path>",
		Short: "Show the cues of a subtitle file or the subtitle streams of a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if info, err := os.Stat(path); err != nil || info.IsDir() {
				return services.Wrap(services.ErrInputNotFound, "inspect", "stat", path, err)
			}
			if subtitles.IsSubtitleFile(path) {
				return inspectSubtitle(cmd, path, limit, jsonOutput)
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			result, err := ffprobe.Inspect(cmd.Context(), cfg.FFprobeBinary(), path)
			if err != nil {
				return services.Wrap(services.ErrExternalTool, "inspect", "ffprobe", path, err)
			}
			return inspectContainer(cmd, result, jsonOutput)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many cues (0 shows all)")
	addJSONFlag(cmd, &jsonOutput, "Print JSON instead of a table")
	return cmd
}

type cueView struct {
	Index   int    `json:"index"`
	StartMS int64  `json:"start_ms"`
	EndMS   int64  `json:"end_ms"`
	Text    string `json:"text"`
}

func inspectSubtitle(cmd *cobra.Command, path string, limit int, jsonOutput bool) error {
	track, err := subtitles.Load(path)
	if err != nil {
		return services.Wrap(services.ErrInvalidSubtitle, "inspect", "parse", path, err)
	}
	cues := track.Cues
	if limit > 0 && len(cues) > limit {
		cues = cues[:limit]
	}

	if jsonOutput {
		views := make([]cueView, 0, len(cues))
		for _, cue := range cues {
			views = append(views, cueView{
				Index:   cue.Index,
				StartMS: cue.Start.Milliseconds(),
				EndMS:   cue.End.Milliseconds(),
				Text:    cue.Text(),
			})
		}
		return writeJSON(cmd, views)
	}

	rows := make([][]string, 0, len(cues))
	for _, cue := range cues {
		rows = append(rows, []string{
			strconv.Itoa(cue.Index),
			formatTimestamp(cue.Start),
			formatTimestamp(cue.End),
			strings.ReplaceAll(cue.Text(), "\n", " / "),
		})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable([]string{"#", "Start", "End", "Text"}, rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignLeft}))
	fmt.Fprintf(out, "%d cues", track.Len())
	if track.Len() > 0 {
		first, last := track.Bounds()
		fmt.Fprintf(out, ", %s to %s", formatTimestamp(first), formatTimestamp(last))
	}
	if len(cues) < track.Len() {
		fmt.Fprintf(out, " (showing %d)", len(cues))
	}
	fmt.Fprintln(out)
	return nil
}

type streamView struct {
	Index     int    `json:"index"`
	Codec     string `json:"codec"`
	Language  string `json:"language"`
	Title     string `json:"title,omitempty"`
	Forced    bool   `json:"forced"`
	TextBased bool   `json:"text_based"`
}

func inspectContainer(cmd *cobra.Command, result ffprobe.Result, jsonOutput bool) error {
	streams := result.SubtitleStreams()
	views := make([]streamView, 0, len(streams))
	for _, s := range streams {
		views = append(views, streamView{
			Index:     s.Index,
			Codec:     s.CodecName,
			Language:  s.Language(),
			Title:     s.Title(),
			Forced:    s.Forced(),
			TextBased: s.TextBased(),
		})
	}
	if jsonOutput {
		return writeJSON(cmd, views)
	}
	if len(views) == 0 {
		return services.Wrap(services.ErrNoEmbeddedSubtitle, "inspect", "streams", "container has no subtitle streams", nil)
	}

	rows := make([][]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, []string{
			strconv.Itoa(v.Index), v.Codec, v.Language, v.Title, yesNo(v.Forced), yesNo(v.TextBased),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Stream", "Codec", "Language", "Title", "Forced", "Text"}, rows,
		[]columnAlignment{alignRight}))
	return nil
}
