package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dephub/dephub-align/align"
)

func newPropertiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "properties",
		Short: "Print the property rewrites needed by the aligned reactor",
		Args:  cobra.NoArgs,
		RunE:  runProperties,
	}
	cmd.Flags().StringP("reactor", "r", "reactor.yaml", "reactor description")
	cmd.Flags().Bool("strict", false, "reject updates that are not strict alignments")
	return cmd
}

// propertyOutput is one rewrite as printed.
type propertyOutput struct {
	Project  string `yaml:"project"`
	Property string `yaml:"property"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

func runProperties(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	path, _ := cmd.Flags().GetString("reactor")
	strict, _ := cmd.Flags().GetBool("strict")
	r, err := readReactor(path)
	if err != nil {
		return err
	}

	versions, err := calculateReactor(cmd.Context(), s, r)
	if err != nil {
		return err
	}

	pp := align.NewPropertyPropagator(s.policy,
		align.WithPropagatorLogger(s.logger),
		align.WithStrictAlignment(strict),
	)
	for _, ref := range r.file.References {
		project, err := r.project(ref.Project)
		if err != nil {
			return fmt.Errorf("reference %s: %w", ref.Expression, err)
		}
		target, err := r.project(ref.Target)
		if err != nil {
			return fmt.Errorf("reference %s: %w", ref.Expression, err)
		}
		applied, err := pp.CacheProperty(project, ref.Expression, target.Coordinate.OriginalVersion, versions[target.GA()])
		if err != nil {
			return err
		}
		if !applied {
			s.logger.Debug("reference left unchanged",
				slog.String("project", ref.Project),
				slog.String("expression", ref.Expression),
			)
		}
	}
	for _, u := range r.file.Updates {
		status, err := pp.UpdateProperties(r.ordered, u.Force, u.Property, u.Value)
		if err != nil {
			return err
		}
		s.logger.Debug("property update", slog.String("property", u.Property), slog.String("status", status.String()))
	}

	updates := pp.Updates()
	out := make([]propertyOutput, 0, len(updates))
	for _, u := range updates {
		out = append(out, propertyOutput{Project: u.Project.String(), Property: u.Property, From: u.OldValue, To: u.NewValue})
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	defer enc.Close()
	return enc.Encode(out)
}
