package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newResetCmd creates the reset command
func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Overwrite the live document with the default document",
		Long: `Overwrite the live document with a fresh copy of the default document and
reload it.

ALL LIVE CONTENTS ARE LOST. To create the live document only when it does
not exist yet, run any loading command such as 'layerconf show'.

Examples:
  layerconf reset --default defaults/config.yml           # Reset with confirmation
  layerconf reset --default defaults/config.yml --force   # Skip confirmation (for scripts/automation)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")

			s, _, err := openStore(cmd, false)
			if err != nil {
				return err
			}
			p, err := newProvider()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !force {
				_, _ = fmt.Fprintf(out, "Overwrite %s with its default?\n", p.Path())
				_, _ = fmt.Fprint(out, "Continue? [y/N]: ")

				var input string
				_, _ = fmt.Fscanln(cmd.InOrStdin(), &input)
				if input != "y" && input != "Y" {
					_, _ = fmt.Fprintln(out, "Aborted.")
					return nil
				}
			}

			if err := s.ResetToDefault(); err != nil {
				return err
			}
			if err := s.Reload(); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(out, "%s reset to default (%d options)\n", p.Path(), s.Snapshot().Config.Len())
			return nil
		},
	}

	cmd.Flags().BoolP("force", "f", false, "skip confirmation")
	return cmd
}
