package merge

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/annoset/annotation"
	"github.com/hupe1980/annoset/attr"
	"github.com/hupe1980/annoset/category"
	"github.com/hupe1980/annoset/dataset"
)

// ErrNoSources is returned when Merge is called without sources.
var ErrNoSources = errors.New("merge: no sources")

// Merger combines several datasets describing the same items. A Merger is
// immutable and safe for concurrent use.
type Merger struct {
	opts options
}

// New returns a Merger. Options depending on the number of sources are
// checked by Merge.
func New(opts ...Option) (*Merger, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	p, err := ParsePolicy(string(o.policy))
	if err != nil {
		return nil, err
	}
	o.policy = p
	if o.workers < 0 {
		return nil, dataset.Invalid("workers", "must not be negative")
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return &Merger{opts: o}, nil
}

// Merge is a convenience for New followed by Merger.Merge.
func Merge(ctx context.Context, sources []dataset.Source, opts ...Option) (*dataset.Dataset, *Report, error) {
	m, err := New(opts...)
	if err != nil {
		return nil, nil, err
	}
	return m.Merge(ctx, sources...)
}

// holder is one source's copy of an item.
type holder struct {
	source int
	item   *dataset.Item
}

type itemResult struct {
	item      *dataset.Item
	conflicts []Conflict
	clusters  int
	agreed    int
}

// Merge matches annotations of items shared between sources and emits one
// dataset under the merged category registry. Disagreements never fail
// the merge; they are listed in the report.
func (m *Merger) Merge(ctx context.Context, sources ...dataset.Source) (*dataset.Dataset, *Report, error) {
	if len(sources) == 0 {
		return nil, nil, ErrNoSources
	}
	o := m.opts
	if err := o.validate(len(sources)); err != nil {
		return nil, nil, err
	}

	regs := make([]*category.Registry, len(sources))
	for i, src := range sources {
		regs[i] = src.Categories()
	}
	rec := reconcile(regs, o.labelMapping)

	var order []dataset.Key
	groups := make(map[dataset.Key][]holder)
	for s, src := range sources {
		for it := range src.Items() {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			k := it.Key()
			hs, seen := groups[k]
			if !seen {
				order = append(order, k)
			}
			if len(hs) > 0 && hs[len(hs)-1].source == s {
				o.logger.Warn("duplicate item in merge source", "source", s, "item", k.String())
				continue
			}
			groups[k] = append(hs, holder{source: s, item: it})
		}
	}

	workers := o.workers
	if workers == 0 {
		workers = max(o.rc.Workers(), 1)
	}

	results := make([]itemResult, len(order))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, k := range order {
		g.Go(func() error {
			if o.rc != nil {
				if err := o.rc.AcquireWorker(gctx); err != nil {
					return err
				}
				defer o.rc.ReleaseWorker()
			}
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = m.mergeItem(groups[k], rec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	out := dataset.New(rec.cats)
	report := &Report{Stats: Stats{Sources: len(sources)}}
	for i, res := range results {
		if err := out.Add(res.item); err != nil {
			return nil, nil, err
		}
		if len(groups[order[i]]) > 1 {
			report.Stats.SharedItems++
		}
		report.Stats.Clusters += res.clusters
		report.Stats.Agreed += res.agreed
		report.Stats.Annotations += len(res.item.Annotations)
		report.Conflicts = append(report.Conflicts, res.conflicts...)
	}
	slices.SortStableFunc(report.Conflicts, func(a, b Conflict) int {
		return dataset.Key{ID: a.ItemID, Subset: a.Subset}.Compare(dataset.Key{ID: b.ItemID, Subset: b.Subset})
	})
	report.Stats.Items = out.Len()
	report.Stats.Conflicts = len(report.Conflicts)

	o.logger.Info("merge finished",
		"sources", len(sources),
		"policy", string(o.policy),
		"items", report.Stats.Items,
		"shared_items", report.Stats.SharedItems,
		"conflicts", report.Stats.Conflicts,
	)
	return out, report, nil
}

func (m *Merger) mergeItem(hs []holder, rec *reconciled) itemResult {
	o := &m.opts
	base := hs[0].item.WithAnnotations(nil)
	base.Media = base.Media.Clone()
	base.Attributes = base.Attributes.Clone()
	for _, h := range hs[1:] {
		if base.Media == nil {
			base.Media = h.item.Media.Clone()
		}
		for k, v := range h.item.Attributes {
			if _, ok := base.Attributes[k]; !ok {
				if base.Attributes == nil {
					base.Attributes = make(attr.Map)
				}
				base.Attributes[k] = v
			}
		}
	}

	if len(hs) == 1 {
		base.Annotations = relabel(hs[0], rec)
		return itemResult{item: base}
	}

	var entries []entry
	for _, h := range hs {
		for i, a := range relabel(h, rec) {
			entries = append(entries, entry{source: h.source, index: i, ann: a})
		}
	}

	quorum := len(hs)
	if o.quorum > 0 {
		quorum = min(o.quorum, len(hs))
	}

	res := itemResult{}
	var anns []*annotation.Annotation
	for _, c := range clusters(entries, candidates(entries, o)) {
		res.clusters++
		members := make([]*annotation.Annotation, len(c.members))
		for i, idx := range c.members {
			members[i] = entries[idx].ann
		}
		reason := agreement(members, len(hs), o)
		if reason == "" {
			res.agreed++
			agreed := members[0].Clone()
			agreed.Attributes, _ = unionAttributes(members, o.epsilon)
			anns = append(anns, agreed)
			continue
		}

		var kept []*annotation.Annotation
		switch o.policy {
		case Union:
			if len(c.members) == 1 {
				kept = append(kept, entries[c.members[0]].ann.Clone())
				break
			}
			for _, idx := range c.members {
				a := entries[idx].ann.Clone()
				if a.Attributes == nil {
					a.Attributes = make(attr.Map)
				}
				a.Attributes[SourceAttribute] = attr.Int(int64(entries[idx].source))
				kept = append(kept, a)
			}
		case Intersect:
			if len(members) >= quorum {
				kept = append(kept, consensus(members, o))
			}
		case Replace:
			pick := c.members[0]
			for _, idx := range c.members {
				if entries[idx].source == o.priority {
					pick = idx
					break
				}
			}
			kept = append(kept, entries[pick].ann.Clone())
		}
		anns = append(anns, kept...)
		res.conflicts = append(res.conflicts, m.conflict(base, entries, c, reason, len(kept) > 0, rec))
	}
	base.Annotations = anns
	res.item = base
	return res
}

func (m *Merger) conflict(it *dataset.Item, entries []entry, c *cluster, reason Reason, kept bool, rec *reconciled) Conflict {
	members := make([]Member, len(c.members))
	for i, idx := range c.members {
		e := entries[idx]
		name, _ := rec.cats.LabelName(e.ann.Label)
		members[i] = Member{
			Source:       e.source,
			Index:        e.index,
			AnnotationID: e.ann.ID,
			Kind:         e.ann.Kind(),
			Label:        name,
		}
	}
	return Conflict{
		ItemID:     it.ID,
		Subset:     it.Subset,
		Members:    members,
		Reason:     reason,
		Similarity: c.minSim,
		Kept:       kept,
	}
}

// relabel clones the holder's annotations into the merged label space.
// Annotations whose label has no category are dropped.
func relabel(h holder, rec *reconciled) []*annotation.Annotation {
	out := make([]*annotation.Annotation, 0, len(h.item.Annotations))
	for _, a := range h.item.Annotations {
		c := a.Clone()
		if a.HasLabel() {
			c.Label = rec.label(h.source, a.Label)
			if c.Label < 0 {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}
