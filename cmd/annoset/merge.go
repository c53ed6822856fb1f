package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/hupe1980/annoset"
	"github.com/hupe1980/annoset/codec"
	"github.com/hupe1980/annoset/dataset"
	"github.com/hupe1980/annoset/format/native"
	"github.com/hupe1980/annoset/merge"
)

// reportFile is written next to the merged dataset.
const reportFile = "merge_report.json"

func newMergeCmd(a *app) *cobra.Command {
	var (
		f             ioFlags
		inputFormat   string
		policy        string
		threshold     float64
		quorum        int
		priority      int
		labelAgnostic bool
		mapping       map[string]string
	)
	cmd := &cobra.Command{
		Use:   "merge <source> <source>...",
		Short: "Merge the annotations of several datasets",
		Long: `Match annotations of the same item across sources and resolve
disagreements with a policy: union keeps everything, intersect keeps
consensus annotations seen in enough sources, replace prefers one source.
A conflict report is written to merge_report.json in the output.`,
		Example: `  annoset merge ./a ./b ./c -o ./merged --policy intersect --quorum 2
  annoset merge ./a ./b -o ./merged --map automobile=car --label-agnostic`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			fs := cmd.Flags()
			if !fs.Changed("policy") {
				policy = a.cfg.Merge.Policy
			}
			if !fs.Changed("threshold") {
				threshold = a.cfg.Merge.Threshold
			}
			if !fs.Changed("quorum") {
				quorum = a.cfg.Merge.Quorum
			}
			p, err := merge.ParsePolicy(policy)
			if err != nil {
				return err
			}

			sources := make([]dataset.Source, 0, len(args))
			for _, loc := range args {
				in := ioFlags{input: loc, inputFormat: inputFormat}
				ds, _, err := a.load(ctx, &in)
				if err != nil {
					return fmt.Errorf("%s: %w", loc, err)
				}
				sources = append(sources, ds)
			}

			opts := []merge.Option{
				merge.WithPolicy(p),
				merge.WithThreshold(threshold),
				merge.WithQuorum(quorum),
				merge.WithPrioritySource(priority),
			}
			if labelAgnostic {
				opts = append(opts, merge.WithLabelAgnostic())
			}
			if len(mapping) > 0 {
				opts = append(opts, merge.WithLabelMapping(mapping))
			}

			merged, report, err := a.session.Merge(ctx, sources, opts...)
			if err != nil {
				return err
			}
			if err := a.save(ctx, &f, merged, native.Name); err != nil {
				return err
			}

			store, err := openStore(ctx, a.cfg, f.output, a.session.Resources())
			if err != nil {
				return err
			}
			data, err := codec.Default.Marshal(report)
			if err != nil {
				return err
			}
			if err := store.Put(ctx, reportFile, data); err != nil {
				return err
			}

			printReport(a, report)
			return nil
		},
	}
	f.register(cmd, false)
	fs := cmd.Flags()
	fs.StringVar(&inputFormat, "input-format", annoset.AutoFormat, "format of all sources")
	fs.StringVar(&policy, "policy", string(merge.Union), "merge policy: union, intersect, replace")
	fs.Float64Var(&threshold, "threshold", merge.DefaultThreshold, "minimum similarity of a match")
	fs.IntVar(&quorum, "quorum", 0, "sources required by intersect (0 = all holding the item)")
	fs.IntVar(&priority, "priority", 0, "source index preferred by replace")
	fs.BoolVar(&labelAgnostic, "label-agnostic", false, "match annotations regardless of label")
	fs.StringToStringVar(&mapping, "map", nil, "rename source labels before merging, e.g. automobile=car")
	return cmd
}

func printReport(a *app, r *merge.Report) {
	s := r.Stats
	okColor.Fprintf(a.stdout, "merged %d sources: %d items, %d annotations, %d/%d clusters agreed\n",
		s.Sources, s.Items, s.Annotations, s.Agreed, s.Clusters)
	counts := r.ByReason()
	for _, reason := range slices.Sorted(maps.Keys(counts)) {
		fmt.Fprintf(a.stdout, "  %s: %d\n", reasonColor(reason).Sprint(reason), counts[reason])
	}
}
