package native

import (
	"github.com/hupe1980/annoset/attr"
)

// formatVersion is bumped on incompatible document changes.
const formatVersion = 1

type document struct {
	Info       info          `json:"info"`
	Categories categoriesDoc `json:"categories"`
	Items      []itemDoc     `json:"items"`
}

type info struct {
	Version int    `json:"format_version"`
	Subset  string `json:"subset"`
}

type categoriesDoc struct {
	Label  labelCategoriesDoc  `json:"label"`
	Points []pointsCategoryDoc `json:"points,omitempty"`
	Mask   []maskCategoryDoc   `json:"mask,omitempty"`
}

type labelCategoriesDoc struct {
	Labels     []labelDoc `json:"labels"`
	Attributes []string   `json:"attributes,omitempty"`
}

type labelDoc struct {
	Name       string   `json:"name"`
	Parent     string   `json:"parent,omitempty"`
	Attributes []string `json:"attributes,omitempty"`
}

type pointsCategoryDoc struct {
	LabelID int      `json:"label_id"`
	Labels  []string `json:"labels,omitempty"`
	Joints  [][2]int `json:"joints,omitempty"`
}

type maskCategoryDoc struct {
	LabelID int    `json:"label_id"`
	Color   string `json:"color"`
}

type itemDoc struct {
	ID          string          `json:"id"`
	Media       *mediaDoc       `json:"media,omitempty"`
	Attributes  attr.Map        `json:"attr,omitempty"`
	Annotations []annotationDoc `json:"annotations"`
}

type mediaDoc struct {
	Kind    string   `json:"kind"`
	Path    string   `json:"path,omitempty"`
	Width   int      `json:"width,omitempty"`
	Height  int      `json:"height,omitempty"`
	Frame   int      `json:"frame,omitempty"`
	Related []string `json:"related,omitempty"`
}

type annotationDoc struct {
	ID         int      `json:"id"`
	Type       string   `json:"type"`
	LabelID    *int     `json:"label_id,omitempty"`
	Group      int      `json:"group,omitempty"`
	ZOrder     int      `json:"z_order,omitempty"`
	Attributes attr.Map `json:"attributes,omitempty"`

	Bbox       []float64   `json:"bbox,omitempty"`
	Points     []float64   `json:"points,omitempty"`
	Visibility []int       `json:"visibility,omitempty"`
	Mask       *maskDoc    `json:"mask,omitempty"`
	Position   *[3]float64 `json:"position,omitempty"`
	Rotation   *[3]float64 `json:"rotation,omitempty"`
	Scale      *[3]float64 `json:"scale,omitempty"`
	Caption    *string     `json:"caption,omitempty"`
}

// maskDoc stores a mask as alternating run lengths of unset and set
// pixels in row-major order, starting with unset.
type maskDoc struct {
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Counts []uint32 `json:"counts"`
}
