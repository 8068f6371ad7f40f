package layout

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/diag"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// FullWidth is the width of a row in percent.
const FullWidth = 100

// DefaultGridColumns is used when a grid layout declares fewer than one column.
const DefaultGridColumns = 2

// Cell places one field inside a row.
type Cell struct {
	FieldID string `json:"fieldId"`
	Width   int    `json:"width"`
}

// Row is one visual row of the render plan.
type Row struct {
	ID    string `json:"id"`
	Cells []Cell `json:"cells"`
}

// FieldIDs returns the ids of the row's fields in render order.
func (r Row) FieldIDs() []string {
	out := make([]string, len(r.Cells))
	for i, cell := range r.Cells {
		out[i] = cell.FieldID
	}
	return out
}

// Width returns the total width occupied by the row.
func (r Row) Width() int {
	total := 0
	for _, cell := range r.Cells {
		total += cell.Width
	}
	return total
}

// OrganizeIntoRows arranges fields using the form settings' layout mode and
// grid column count.
func OrganizeIntoRows(fields []model.FieldDefinition, settings model.Settings, sink diag.Sink) []Row {
	return Organize(fields, settings.Layout, settings.GridColumns, sink)
}

// Organize arranges fields into rows. It is visibility-agnostic: callers pass
// whichever fields should be drawn. Fields are ordered by Order with ties kept
// in array position; the input slice is never modified.
func Organize(fields []model.FieldDefinition, mode model.LayoutMode, gridColumns int, sink diag.Sink) []Row {
	if len(fields) == 0 {
		return nil
	}
	ordered := sortByOrder(fields)

	switch normalizeMode(mode, sink) {
	case model.LayoutSingleColumn:
		return singleColumn(ordered)
	case model.LayoutTwoColumn:
		return chunked(ordered, 2, true)
	case model.LayoutGrid:
		if gridColumns < 1 {
			diag.Warn(sink, diag.CodeInvalidGridColumns, "", "grid layout declares %d columns; using %d", gridColumns, DefaultGridColumns)
			gridColumns = DefaultGridColumns
		}
		if gridColumns > FullWidth {
			diag.Warn(sink, diag.CodeInvalidGridColumns, "", "grid layout declares %d columns; capping at %d", gridColumns, FullWidth)
			gridColumns = FullWidth
		}
		return chunked(ordered, gridColumns, false)
	default:
		return auto(ordered, sink)
	}
}

func normalizeMode(mode model.LayoutMode, sink diag.Sink) model.LayoutMode {
	switch model.LayoutMode(strings.ToLower(strings.TrimSpace(string(mode)))) {
	case "", model.LayoutAuto:
		return model.LayoutAuto
	case model.LayoutSingleColumn, model.LayoutSingle:
		return model.LayoutSingleColumn
	case model.LayoutTwoColumn:
		return model.LayoutTwoColumn
	case model.LayoutGrid:
		return model.LayoutGrid
	default:
		diag.Warn(sink, diag.CodeUnknownLayout, "", "unknown layout mode %q; using auto", mode)
		return model.LayoutAuto
	}
}

func sortByOrder(fields []model.FieldDefinition) []model.FieldDefinition {
	ordered := make([]model.FieldDefinition, len(fields))
	copy(ordered, fields)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Order < ordered[j].Order
	})
	return ordered
}

func singleColumn(fields []model.FieldDefinition) []Row {
	rows := make([]Row, 0, len(fields))
	for i, field := range fields {
		rows = append(rows, Row{
			ID:    rowName(i),
			Cells: []Cell{{FieldID: field.ID, Width: FullWidth}},
		})
	}
	return rows
}

// chunked fills rows of size columns with equal widths. When stretchLast is
// set a lone trailing field takes the full row.
func chunked(fields []model.FieldDefinition, columns int, stretchLast bool) []Row {
	width := FullWidth / columns
	if width < 1 {
		width = 1
	}
	rows := make([]Row, 0, (len(fields)+columns-1)/columns)
	for start := 0; start < len(fields); start += columns {
		end := min(start+columns, len(fields))
		row := Row{ID: rowName(len(rows))}
		for _, field := range fields[start:end] {
			row.Cells = append(row.Cells, Cell{FieldID: field.ID, Width: width})
		}
		if stretchLast && len(row.Cells) == 1 {
			row.Cells[0].Width = FullWidth
		}
		rows = append(rows, row)
	}
	return rows
}

// auto groups fields sharing a row id. Fields are visited in order, so rows are
// created in the order of their lowest-ordered member and members keep their
// relative order.
func auto(fields []model.FieldDefinition, sink diag.Sink) []Row {
	type group struct {
		id     string
		fields []model.FieldDefinition
	}
	var groups []*group
	byRow := make(map[string]*group)
	for _, field := range fields {
		rowID := strings.TrimSpace(field.RowID)
		if rowID == "" {
			groups = append(groups, &group{id: "row-" + field.ID, fields: []model.FieldDefinition{field}})
			continue
		}
		if g, ok := byRow[rowID]; ok {
			g.fields = append(g.fields, field)
			continue
		}
		g := &group{id: rowID, fields: []model.FieldDefinition{field}}
		byRow[rowID] = g
		groups = append(groups, g)
	}

	rows := make([]Row, 0, len(groups))
	for _, g := range groups {
		widths := resolveWidths(g.fields)
		if total := sum(widths); total > FullWidth {
			diag.Warn(sink, diag.CodeRowOverflow, g.fields[0].ID, "row %q declares %d%% width; scaling to %d%%", g.id, total, FullWidth)
			widths = distribute(FullWidth, widths)
		}
		row := Row{ID: g.id, Cells: make([]Cell, len(g.fields))}
		for i, field := range g.fields {
			row.Cells[i] = Cell{FieldID: field.ID, Width: widths[i]}
		}
		rows = append(rows, row)
	}
	return rows
}

// resolveWidths returns each member's effective width before clamping.
// Undeclared widths share whatever the declared members leave free; when
// nothing is left they fall back to an even split and the row is clamped.
func resolveWidths(fields []model.FieldDefinition) []int {
	widths := make([]int, len(fields))
	var undeclared []int
	declared := 0
	for i, field := range fields {
		w := field.Width
		switch {
		case w <= 0:
			undeclared = append(undeclared, i)
			continue
		case w > FullWidth:
			w = FullWidth
		}
		widths[i] = w
		declared += w
	}
	if len(undeclared) == 0 {
		return widths
	}

	free := FullWidth - declared
	if free < len(undeclared) {
		share := max(FullWidth/len(fields), 1)
		for _, i := range undeclared {
			widths[i] = share
		}
		return widths
	}
	weights := make([]int, len(undeclared))
	for i := range weights {
		weights[i] = 1
	}
	for i, w := range distribute(free, weights) {
		widths[undeclared[i]] = w
	}
	return widths
}

// distribute splits total proportionally to weights using largest-remainder
// rounding, so the result sums to exactly total. Ties go to the earlier
// member. Every member keeps at least 1 when total allows it.
func distribute(total int, weights []int) []int {
	out := make([]int, len(weights))
	weightSum := sum(weights)
	if weightSum <= 0 || len(weights) == 0 {
		return out
	}

	type remainder struct {
		index int
		frac  int
	}
	rems := make([]remainder, len(weights))
	assigned := 0
	for i, w := range weights {
		scaled := total * w
		out[i] = scaled / weightSum
		rems[i] = remainder{index: i, frac: scaled % weightSum}
		assigned += out[i]
	}
	sort.SliceStable(rems, func(a, b int) bool { return rems[a].frac > rems[b].frac })
	for i := 0; assigned < total; i = (i + 1) % len(rems) {
		out[rems[i].index]++
		assigned++
	}

	if total < len(out) {
		return out
	}
	for i := range out {
		if out[i] > 0 {
			continue
		}
		largest := 0
		for j := range out {
			if out[j] > out[largest] {
				largest = j
			}
		}
		out[largest]--
		out[i] = 1
	}
	return out
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

func rowName(i int) string {
	return fmt.Sprintf("row-%d", i)
}
