package scene

import (
	"math"
	"slices"
)

// ---------------------------------------------------------------------------
// Scale tiers
// ---------------------------------------------------------------------------

// ItemSize is a scale tier for item nodes.
type ItemSize float64

const (
	ItemTiny   ItemSize = 0.294
	ItemHand   ItemSize = 0.3745
	ItemSmall  ItemSize = 0.469
	ItemMedium ItemSize = 0.625
)

// BlockSize is a scale tier for block-like nodes.
type BlockSize float64

const (
	BlockVerySmall BlockSize = 0.294
	BlockSmall     BlockSize = 0.3745
	BlockMedium    BlockSize = 0.469
	BlockLarge     BlockSize = 0.625
	BlockSolid     BlockSize = 1
)

var (
	itemTiers  = []float64{float64(ItemTiny), float64(ItemHand), float64(ItemSmall), float64(ItemMedium)}
	blockTiers = []float64{float64(BlockVerySmall), float64(BlockSmall), float64(BlockMedium), float64(BlockLarge), float64(BlockSolid)}
)

// Tiers returns the ascending set of allowed scale values for a node type.
// Items use the item tiers; every other type uses the block tiers.
func Tiers(t NodeType) []float64 {
	if t == NodeItem {
		return slices.Clone(itemTiers)
	}
	return slices.Clone(blockTiers)
}

// IsTier reports whether scale is one of the allowed values for t.
func IsTier(t NodeType, scale float64) bool {
	return slices.Contains(Tiers(t), scale)
}

// NearestTier returns the allowed scale for t closest to v. Ties resolve to
// the smaller tier.
func NearestTier(t NodeType, v float64) float64 {
	tiers := Tiers(t)
	best := tiers[0]
	for _, s := range tiers[1:] {
		if math.Abs(s-v) < math.Abs(best-v) {
			best = s
		}
	}
	return best
}

// ---------------------------------------------------------------------------
// Snapping
// ---------------------------------------------------------------------------

// SnapMode governs how continuous transform edits are quantized.
type SnapMode int

const (
	SnapGrid   SnapMode = iota // round to a grid interval like 0.1 or 0.5
	SnapScale                  // step through the discrete scale tiers
	SnapCustom                 // round to a caller-chosen interval
)

func (m SnapMode) String() string {
	switch m {
	case SnapGrid:
		return "grid"
	case SnapScale:
		return "scale"
	case SnapCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// SnapPosition quantizes one positional component according to the
// transform's snapping policy. Scale mode leaves positions continuous.
func SnapPosition(tr Transform, v float64) float64 {
	switch tr.SnapMode {
	case SnapGrid, SnapCustom:
		return roundTo(v, tr.SnapInterval)
	default:
		return v
	}
}

// SnapScaleValue quantizes a scale for a node of type t. Scale mode picks the
// nearest tier; the interval modes round first and then clamp onto a tier so
// the result is always a member of Tiers(t).
func SnapScaleValue(t NodeType, tr Transform, v float64) float64 {
	if tr.SnapMode != SnapScale {
		v = roundTo(v, tr.SnapInterval)
	}
	return NearestTier(t, v)
}

// roundTo rounds v to the nearest multiple of step; a non-positive step
// returns v unchanged.
func roundTo(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Round(v/step) * step
}
