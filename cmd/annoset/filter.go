package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/annoset/dataset"
	"github.com/hupe1980/annoset/transform"
)

func newFilterCmd(a *app) *cobra.Command {
	var (
		f           ioFlags
		expr        string
		mode        string
		removeEmpty bool
	)
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Keep the items or annotations matching a query",
		Example: `  annoset filter -i ./ds -o ./cars -e "/item/annotation[label='car']" -m a --remove-empty
  annoset filter -i ./ds -o ./train -e "/item[subset='train']"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := transform.ParseMode(mode)
			if err != nil {
				return err
			}
			var opts []transform.FilterOption
			if removeEmpty {
				opts = append(opts, transform.RemoveEmpty())
			}

			ds, name, err := a.load(cmd.Context(), &f)
			if err != nil {
				return err
			}
			view, err := a.session.Filter(ds, expr, m, opts...)
			if err != nil {
				return err
			}
			out, err := dataset.Materialize(view)
			if err != nil {
				return err
			}
			if err := a.save(cmd.Context(), &f, out, name); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "kept %d of %d items\n", out.Len(), ds.Len())
			return nil
		},
	}
	f.register(cmd, true)
	cmd.Flags().StringVarP(&expr, "expr", "e", "", "query expression")
	cmd.Flags().StringVarP(&mode, "mode", "m", "i", "filter mode: i, a or i+a")
	cmd.Flags().BoolVar(&removeEmpty, "remove-empty", false, "drop items left without annotations")
	_ = cmd.MarkFlagRequired("expr")
	return cmd
}
