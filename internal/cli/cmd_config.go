package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	lcerrors "github.com/randalmurphal/layerconf/internal/errors"
	"github.com/randalmurphal/layerconf/internal/report"
	"github.com/randalmurphal/layerconf/internal/tree"
)

// showResult is the JSON form of 'show'.
type showResult struct {
	Source  string          `json:"source"`
	Reload  string          `json:"reload"`
	Config  []tree.Entry    `json:"config"`
	Reports []report.Report `json:"reports"`
}

// newShowCmd creates the show command.
func newShowCmd() *cobra.Command {
	var (
		flat  bool
		match string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Load the live and default documents and show the effective configuration.

By default, outputs valid YAML. Missing and redundant option reports are
written to stderr as part of loading.

Examples:
  layerconf show                         # Effective config as YAML
  layerconf show --flat                  # One "path = value" line per option
  layerconf show --match 'database.**'   # Only options under database
  layerconf show --json                  # Options and reports as JSON`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, rec, err := openStore(cmd, true)
			if err != nil {
				return err
			}

			snap := s.Snapshot()
			cfg := snap.Config
			if match != "" {
				cfg, err = cfg.Match(match)
				if err != nil {
					return lcerrors.Wrap(err, "invalid --match pattern")
				}
			}

			out := cmd.OutOrStdout()
			switch {
			case jsonOut:
				return printJSON(out, showResult{
					Source:  s.Name(),
					Reload:  snap.ID,
					Config:  cfg.Entries(),
					Reports: rec.Reports(),
				})
			case flat:
				printFlat(out, cfg)
				return nil
			default:
				return printYAML(out, cfg)
			}
		},
	}

	cmd.Flags().BoolVar(&flat, "flat", false, "print one dotted path per line")
	cmd.Flags().StringVar(&match, "match", "", "only show paths matching a glob (e.g. 'db.**')")

	return cmd
}

// newGetCmd creates the get command.
func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <path>",
		Short: "Get one effective value",
		Long: `Get the effective value of one option.

Paths use dot notation for nested options (e.g., "database.port").

Examples:
  layerconf get database.port
  layerconf get database.port --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			s, _, err := openStore(cmd, true)
			if err != nil {
				return err
			}

			value, err := s.Get(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return printJSON(out, map[string]any{
					"path":  path,
					"kind":  value.Kind().String(),
					"value": value,
				})
			}
			_, _ = fmt.Fprintln(out, value.String())
			return nil
		},
	}
}
