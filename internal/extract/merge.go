package extract

import (
	"slices"

	"github.com/roach88/pgcheck/internal/ir"
)

// Merge intersects two constraint records from the sides of an AND.
//
// Lower bounds (minLength, min, exclusiveMin) keep the larger value and
// upper bounds (maxLength, max, exclusiveMax) the smaller. The remaining
// fields carry through from whichever side sets them. If both sides set one
// of those to different values the record cannot hold the conjunction, and
// Merge reports false.
func Merge(a, b ir.Constraints) (ir.Constraints, bool) {
	out := ir.Constraints{
		MinLength:    tighter(a.MinLength, b.MinLength, larger),
		Min:          tighter(a.Min, b.Min, larger),
		ExclusiveMin: tighter(a.ExclusiveMin, b.ExclusiveMin, larger),
		MaxLength:    tighter(a.MaxLength, b.MaxLength, smaller),
		Max:          tighter(a.Max, b.Max, smaller),
		ExclusiveMax: tighter(a.ExclusiveMax, b.ExclusiveMax, smaller),
	}

	var ok bool
	if out.Equals, ok = carry(a.Equals, b.Equals); !ok {
		return ir.Constraints{}, false
	}
	if out.Pattern, ok = carry(a.Pattern, b.Pattern); !ok {
		return ir.Constraints{}, false
	}
	if out.StartsWith, ok = carry(a.StartsWith, b.StartsWith); !ok {
		return ir.Constraints{}, false
	}
	if out.EndsWith, ok = carry(a.EndsWith, b.EndsWith); !ok {
		return ir.Constraints{}, false
	}
	if out.OneOf, ok = carryList(a.OneOf, b.OneOf); !ok {
		return ir.Constraints{}, false
	}
	return out, true
}

// tighter combines two optional bounds with pick when both are present.
func tighter(a, b *int64, pick func(x, y int64) int64) *int64 {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		return ir.Int(*b)
	case b == nil:
		return ir.Int(*a)
	default:
		return ir.Int(pick(*a, *b))
	}
}

func larger(x, y int64) int64 { return max(x, y) }
func smaller(x, y int64) int64 { return min(x, y) }

// carry returns whichever side is set. Both set must agree.
func carry[T comparable](a, b *T) (*T, bool) {
	switch {
	case a == nil && b == nil:
		return nil, true
	case a == nil:
		v := *b
		return &v, true
	case b == nil, *a == *b:
		v := *a
		return &v, true
	default:
		return nil, false
	}
}

func carryList(a, b []string) ([]string, bool) {
	switch {
	case a == nil:
		return slices.Clone(b), true
	case b == nil, slices.Equal(a, b):
		return slices.Clone(a), true
	default:
		return nil, false
	}
}
