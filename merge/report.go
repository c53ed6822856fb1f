package merge

import (
	"fmt"
	"strings"

	"github.com/hupe1980/annoset/annotation"
)

// Reason classifies why a cluster did not reach full agreement.
type Reason string

const (
	// ReasonUnmatched marks an annotation no other source matched.
	ReasonUnmatched Reason = "unmatched"
	// ReasonBelowQuorum marks a cluster seen in more than one but not all
	// sources holding the item.
	ReasonBelowQuorum Reason = "below_quorum"
	// ReasonGeometryMismatch marks a full cluster whose shapes differ by
	// more than the tolerance.
	ReasonGeometryMismatch Reason = "geometry_mismatch"
	// ReasonLabelMismatch marks a cluster with differing labels, possible
	// only in label-agnostic mode.
	ReasonLabelMismatch Reason = "label_mismatch"
	// ReasonAttributeMismatch marks an otherwise agreeing cluster whose
	// members carry different values for an attribute.
	ReasonAttributeMismatch Reason = "attribute_mismatch"
)

// Member identifies one annotation of a cluster.
type Member struct {
	Source       int             `json:"source"`
	Index        int             `json:"index"` // position in the source item's annotation list
	AnnotationID int             `json:"annotation_id"`
	Kind         annotation.Kind `json:"kind"`
	Label        string          `json:"label,omitempty"`
}

// Conflict is one cluster that did not reach full agreement. It is
// reported as data; merging never fails because of it.
type Conflict struct {
	ItemID     string   `json:"item_id"`
	Subset     string   `json:"subset"`
	Members    []Member `json:"members"`
	Reason     Reason   `json:"reason"`
	Similarity float64  `json:"similarity"` // weakest committed match of the cluster, 0 for singletons
	// Kept reports whether the policy emitted anything for the cluster.
	Kept bool `json:"kept"`
}

func (c Conflict) String() string {
	parts := make([]string, len(c.Members))
	for i, m := range c.Members {
		parts[i] = fmt.Sprintf("%d:%s#%d", m.Source, m.Kind, m.AnnotationID)
	}
	return fmt.Sprintf("%s/%s %s [%s]", c.Subset, c.ItemID, c.Reason, strings.Join(parts, " "))
}

// Stats summarises a merge.
type Stats struct {
	Sources     int `json:"sources"`
	Items       int `json:"items"`        // items in the output
	SharedItems int `json:"shared_items"` // items present in more than one source
	Clusters    int `json:"clusters"`     // clusters formed on shared items
	Agreed      int `json:"agreed"`       // clusters with full agreement
	Conflicts   int `json:"conflicts"`
	Annotations int `json:"annotations"` // annotations in the output
}

// Report is the outcome of a merge besides the dataset. Conflicts are
// ordered by item id, subset, then the position of the cluster's first
// member in source order.
type Report struct {
	Conflicts []Conflict `json:"conflicts"`
	Stats     Stats      `json:"stats"`
}

// ByReason counts conflicts per reason.
func (r *Report) ByReason() map[Reason]int {
	out := make(map[Reason]int)
	for _, c := range r.Conflicts {
		out[c.Reason]++
	}
	return out
}
