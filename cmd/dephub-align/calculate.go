package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newCalculateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Print the aligned version of every reactor project",
		Args:  cobra.NoArgs,
		RunE:  runCalculate,
	}
	cmd.Flags().StringP("reactor", "r", "reactor.yaml", "reactor description")
	return cmd
}

func runCalculate(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	path, _ := cmd.Flags().GetString("reactor")
	r, err := readReactor(path)
	if err != nil {
		return err
	}

	versions, err := calculateReactor(cmd.Context(), s, r)
	if err != nil {
		return err
	}

	out := make(map[string]string, len(versions))
	for ga, v := range versions {
		out[ga.String()] = v
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	defer enc.Close()
	return enc.Encode(out)
}
