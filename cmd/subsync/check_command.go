package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"subsync/internal/deps"
	"subsync/internal/preflight"
	"subsync/internal/services"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check binaries, directories, translator and catalogue access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			lines := renderSectionHeader("Configuration", colorize)
			configMsg := ctx.configPath
			if !ctx.configSeen {
				configMsg += " (not found, defaults in use)"
			}
			lines = append(lines, renderStatusLine("Config", statusInfo, configMsg, colorize), "")

			lines = append(lines, renderSectionHeader("Binaries", colorize)...)
			for _, status := range preflight.CheckSystemDeps(cmd.Context(), cfg) {
				lines = append(lines, renderStatusLine(status.Name, dependencyKind(status), dependencyMessage(status), colorize))
			}
			lines = append(lines, "")

			results := preflight.RunAll(cmd.Context(), cfg)
			lines = append(lines, renderSectionHeader("Services", colorize)...)
			for _, result := range results {
				kind := statusOK
				if !result.Passed {
					kind = statusError
				}
				lines = append(lines, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			fmt.Fprintln(out, strings.Join(lines, "\n"))

			if failed := preflight.Failed(results); len(failed) > 0 {
				names := make([]string, 0, len(failed))
				for _, f := range failed {
					names = append(names, f.Name)
				}
				return services.Wrap(services.ErrConfiguration, "check", "", "failed checks: "+strings.Join(names, ", "), nil)
			}
			return nil
		},
	}
}

func dependencyKind(status deps.Status) statusKind {
	switch {
	case status.Available:
		return statusOK
	case status.Optional:
		return statusWarn
	default:
		return statusError
	}
}

func dependencyMessage(status deps.Status) string {
	if !status.Available {
		msg := status.Detail
		if status.Optional {
			msg += " (needed only for media containers)"
		}
		return msg
	}
	if status.Version != "" {
		return status.Version
	}
	return status.Path
}
