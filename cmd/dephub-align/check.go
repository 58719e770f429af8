package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dephub/dephub-align/align"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check SOURCE TARGET",
		Short: "Verify that TARGET is a strict alignment of SOURCE",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			source, target := args[0], args[1]
			if !align.CheckStrictValue(s.policy, source, target) {
				return &align.StrictAlignmentViolation{Source: source, Target: target}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is aligned with %s\n", target, source)
			return nil
		},
	}
}
