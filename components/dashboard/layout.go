package dashboard

import (
	"sort"
	"time"
)

// Breakpoint names understood by the grid renderer.
const (
	BreakpointLG  = "lg"
	BreakpointMD  = "md"
	BreakpointSM  = "sm"
	BreakpointXS  = "xs"
	BreakpointXXS = "xxs"
)

const (
	// GridColumns is the column count of the populated (lg) breakpoint.
	GridColumns = 12
	// RowHeight is the pixel height of one grid row.
	RowHeight = 100
	// ResizeSettleDelay is how long after a resize the viewport is re-measured.
	ResizeSettleDelay = 150 * time.Millisecond

	catalogPlacementStep = 3
	embedPlacementStep   = 6
)

// Breakpoints maps breakpoint names to their minimum viewport width.
var Breakpoints = map[string]int{
	BreakpointLG:  1200,
	BreakpointMD:  996,
	BreakpointSM:  768,
	BreakpointXS:  480,
	BreakpointXXS: 2,
}

// BreakpointColumns maps breakpoint names to their column count.
var BreakpointColumns = map[string]int{
	BreakpointLG:  12,
	BreakpointMD:  10,
	BreakpointSM:  6,
	BreakpointXS:  4,
	BreakpointXXS: 2,
}

// LayoutSet holds one ordered rectangle list per breakpoint. Only lg is
// populated; the renderer derives the rest through its own compaction.
type LayoutSet map[string][]GridRect

// Remeasure asks the transport to re-measure the viewport after Delay.
type Remeasure struct {
	InstanceID string        `json:"instanceId"`
	Delay      time.Duration `json:"delay"`
}

// Project converts instances into the renderer layout set.
func Project(instances []WidgetInstance) LayoutSet {
	rects := make([]GridRect, len(instances))
	for i, inst := range instances {
		rects[i] = inst.Layout
		rects[i].I = inst.InstanceID
	}
	return LayoutSet{BreakpointLG: rects}
}

// ApplyExternalLayoutChange folds renderer-reported rectangles back into the
// instances. The output follows the order of changed; rectangles without a
// matching instance are dropped and instances without a rectangle are kept,
// in their original order, after the matched ones.
func ApplyExternalLayoutChange(instances []WidgetInstance, changed []GridRect) []WidgetInstance {
	index := make(map[string]int, len(instances))
	for i, inst := range instances {
		index[inst.InstanceID] = i
	}
	out := make([]WidgetInstance, 0, len(instances))
	used := make(map[string]struct{}, len(changed))
	for _, rect := range changed {
		idx, ok := index[rect.I]
		if !ok {
			continue
		}
		if _, dup := used[rect.I]; dup {
			continue
		}
		used[rect.I] = struct{}{}
		inst := instances[idx]
		inst.Layout = rect
		inst.Layout.I = inst.InstanceID
		out = append(out, inst)
	}
	for _, inst := range instances {
		if _, ok := used[inst.InstanceID]; ok {
			continue
		}
		inst.Layout.I = inst.InstanceID
		out = append(out, inst)
	}
	return out
}

// ApplyResize replaces a single instance's rectangle and returns the
// re-measure signal. Unknown ids leave the instances unchanged and return a
// nil signal.
func ApplyResize(instances []WidgetInstance, instanceID string, rect GridRect) ([]WidgetInstance, *Remeasure) {
	out := make([]WidgetInstance, len(instances))
	copy(out, instances)
	for i := range out {
		if out[i].InstanceID != instanceID {
			continue
		}
		out[i].Layout = rect
		out[i].Layout.I = instanceID
		return out, &Remeasure{InstanceID: instanceID, Delay: ResizeSettleDelay}
	}
	return out, nil
}

// PlaceNew computes the rectangle for the next instance given the current
// instance count.
func PlaceNew(instanceID string, count int, entry CatalogEntry) GridRect {
	return GridRect{
		I: instanceID,
		X: (count * entry.PlacementStep()) % GridColumns,
		Y: AppendRow,
		W: entry.DefaultLayout.W,
		H: entry.DefaultLayout.H,
	}
}

// CompactVertical resolves AppendRow and floating rectangles by moving every
// rectangle up as far as it fits, in row-major order. Widths are clamped to
// cols. The input is not modified.
func CompactVertical(rects []GridRect, cols int) []GridRect {
	if cols <= 0 {
		cols = GridColumns
	}
	out := make([]GridRect, len(rects))
	copy(out, rects)
	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := out[order[a]], out[order[b]]
		if ra.Y != rb.Y {
			return ra.Y < rb.Y
		}
		return ra.X < rb.X
	})

	placed := make([]GridRect, 0, len(out))
	for _, idx := range order {
		rect := out[idx]
		if rect.W > cols {
			rect.W = cols
		}
		if rect.X+rect.W > cols {
			rect.X = cols - rect.W
		}
		if rect.X < 0 {
			rect.X = 0
		}
		if rect.Y < 0 {
			rect.Y = 0
		}
		if b := bottom(placed); rect.Y > b {
			rect.Y = b
		}
		for rect.Y > 0 {
			up := rect
			up.Y--
			if collidesAny(up, placed) {
				break
			}
			rect.Y--
		}
		for collidesAny(rect, placed) {
			rect.Y++
		}
		placed = append(placed, rect)
		out[idx] = rect
	}
	return out
}

func bottom(rects []GridRect) int {
	max := 0
	for _, r := range rects {
		if r.Y+r.H > max {
			max = r.Y + r.H
		}
	}
	return max
}

func collidesAny(rect GridRect, placed []GridRect) bool {
	for _, other := range placed {
		if collides(rect, other) {
			return true
		}
	}
	return false
}

func collides(a, b GridRect) bool {
	return a.X < b.X+b.W && b.X < a.X+a.W && a.Y < b.Y+b.H && b.Y < a.Y+a.H
}
