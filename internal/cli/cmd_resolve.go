package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/layerconf/internal/report"
	"github.com/randalmurphal/layerconf/internal/resolve"
)

// newExplainCmd creates the explain command.
func newExplainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain <path>",
		Short: "Show how one option resolves",
		Long: `Show the resolution chain for one option.

This displays the option's value in the live and default documents and
indicates which value "wins" (takes effect).

Example:
  layerconf explain database.port

The winning value is marked with "← WINNER".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openStore(cmd, false)
			if err != nil {
				return err
			}
			chain, err := s.Explain(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return printJSON(out, chain)
			}
			printChain(out, chain, s.Settings().IncludeDefaults)
			return nil
		},
	}
}

// printChain prints layers highest priority first.
func printChain(out io.Writer, chain resolve.Chain, includeDefaults bool) {
	_, _ = fmt.Fprintf(out, "Resolution chain for '%s':\n", chain.Path)

	for i := len(chain.Entries) - 1; i >= 0; i-- {
		e := chain.Entries[i]
		status := "not set"
		winner := ""
		if e.IsSet {
			status = report.RenderValue(e.Value)
		}
		if e.IsWinning {
			winner = " ← WINNER"
		}
		_, _ = fmt.Fprintf(out, "  %s (%s):\n", strings.ToUpper(e.Layer.String()), layerPriority(e.Layer))
		_, _ = fmt.Fprintf(out, "    %s: %s%s\n", chain.Path, status, winner)
	}

	if !chain.Effective {
		reason := "not set in any layer"
		if includeDefaults && len(chain.Entries) == 2 && chain.Entries[1].IsSet {
			reason = "only the live document sets it and the default document defines the options"
		}
		_, _ = fmt.Fprintf(out, "\nNo effective value: %s\n", reason)
		return
	}
	_, _ = fmt.Fprintf(out, "\nFinal value: %s (from %s)\n", report.RenderValue(chain.FinalValue), chain.Winner)
}

// layerPriority returns a human-readable priority label.
func layerPriority(layer resolve.Layer) string {
	switch layer {
	case resolve.LayerLive:
		return "highest priority"
	case resolve.LayerDefault:
		return "lowest priority"
	default:
		return ""
	}
}
