package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dephub/dephub-align/align"
)

func newSpellingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spellings VERSION",
		Short: "List the spellings previous runs could have written for VERSION",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			for _, v := range align.BuildOldValueSet(s.policy, args[0]) {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	}
}
