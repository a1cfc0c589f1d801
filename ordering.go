package wirestruct

import "golang.org/x/exp/constraints"

// minOf backs the small size-arithmetic WithSize.Sizeof and Str
// length-clamping need (§4.3, §4.4): picking the smaller of two sizes.
// golang.org/x/exp/constraints predates the stdlib cmp package's wide
// availability, which keeps the kernel buildable on the teacher's
// declared go 1.20 floor (SPEC_FULL.md §2).
func minOf[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}
