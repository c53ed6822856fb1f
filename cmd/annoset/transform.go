package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/annoset/transform"
)

func newTransformCmd(a *app) *cobra.Command {
	var (
		f        ioFlags
		pipeline string
		steps    []string
	)
	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Apply a transform pipeline",
		Long: `Apply the steps of a pipeline file (YAML or JSON) or the parameterless
transforms named with --step, in order.`,
		Example: `  annoset transform -i ./ds -o ./out --pipeline pipeline.yaml
  annoset transform -i ./ds -o ./out --step prune_labels --step boxes_to_masks`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			def := &transform.Definition{}
			if pipeline != "" {
				file, err := os.Open(pipeline)
				if err != nil {
					return err
				}
				def, err = transform.LoadDefinition(file)
				_ = file.Close()
				if err != nil {
					return err
				}
			}
			for _, s := range steps {
				def.Steps = append(def.Steps, transform.Step{Name: s})
			}
			if len(def.Steps) == 0 {
				return fmt.Errorf("no steps: use --pipeline or --step")
			}

			ds, name, err := a.load(cmd.Context(), &f)
			if err != nil {
				return err
			}
			out, err := a.session.RunPipeline(cmd.Context(), ds, def)
			if err != nil {
				return err
			}
			if err := a.save(cmd.Context(), &f, out, name); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "applied %d steps, %d items\n", len(def.Steps), out.Len())
			return nil
		},
	}
	f.register(cmd, true)
	cmd.Flags().StringVarP(&pipeline, "pipeline", "p", "", "pipeline definition file")
	cmd.Flags().StringArrayVar(&steps, "step", nil, "transform without parameters, repeatable")
	return cmd
}
