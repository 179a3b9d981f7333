package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/layerconf/internal/report"
	"github.com/randalmurphal/layerconf/internal/store"
	"github.com/randalmurphal/layerconf/internal/tree"
)

// newMissingCmd creates the missing command.
func newMissingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "missing",
		Short: "List options the live document lacks",
		Long: `List every option the default document defines and the live document lacks,
with its default value.

The live document is not created or modified.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openStore(cmd, false)
			if err != nil {
				return err
			}
			entries, err := s.MissingOptions()
			if err != nil {
				return err
			}
			return printEntries(cmd, s, report.KindMissing, entries)
		},
	}
}

// newRedundantCmd creates the redundant command.
func newRedundantCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "redundant",
		Short: "List options the default document does not define",
		Long: `List every option the live document defines and the default document does not.

Redundant options are never used while defaults are included.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openStore(cmd, false)
			if err != nil {
				return err
			}
			entries, err := s.RedundantOptions()
			if err != nil {
				return err
			}
			return printEntries(cmd, s, report.KindRedundant, entries)
		},
	}
}

func printEntries(cmd *cobra.Command, s *store.Store, kind report.Kind, entries []tree.Entry) error {
	out := cmd.OutOrStdout()
	if jsonOut {
		if entries == nil {
			entries = []tree.Entry{}
		}
		return printJSON(out, entries)
	}
	r := report.New(kind, s.Name(), entries)
	if kind == report.KindMissing {
		r = report.NewMissing(s.Name(), entries, s.Settings().IncludeDefaults)
	}
	_, _ = fmt.Fprintln(out, r.Text())
	return nil
}

// newCheckCmd creates the check command.
func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Fail when the live document is out of sync with the default",
		Long: `Count missing and redundant options and exit non-zero when the live document
needs attention.

Missing options always fail the check. Redundant options fail it only when
redundant reporting is enabled (--redundant or report_redundant).

Useful in CI:
  layerconf check --live deploy/config.yml --default app/defaults/config.yml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openStore(cmd, false)
			if err != nil {
				return err
			}
			stats, err := s.Divergence()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				if err := printJSON(out, stats); err != nil {
					return err
				}
			} else {
				_, _ = fmt.Fprintf(out, "%s: %d missing, %d redundant\n", s.Name(), stats.Missing, stats.Redundant)
			}

			failed := stats.Missing > 0 || (stats.Redundant > 0 && s.Settings().ReportRedundantOptions)
			if failed {
				return fmt.Errorf("%s is out of sync with its default (run 'layerconf missing' for details)", s.Name())
			}
			return nil
		},
	}
}
