package spiral

import (
	"fmt"
)

// MaxRestarts bounds how many times generation starts over from the origin after
// finding a repeated offset.
const MaxRestarts = 8

// GridOffset is an integer step count from the first tile along both axes,
// independent of the pixel size of a tile.
type GridOffset struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

// GetColumn implements common.Tile
func (o GridOffset) GetColumn() int {
	return o.DX
}

// GetRow implements common.Tile
func (o GridOffset) GetRow() int {
	return o.DY
}

func (o GridOffset) String() string {
	return fmt.Sprintf("(%d, %d)", o.DX, o.DY)
}

// GenerationError is returned when every attempt produced a repeated offset.
type GenerationError struct {
	Requested int
	Attempts  int
	Duplicate GridOffset
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("spiral generation of %d steps failed after %d attempts: offset %s repeated",
		e.Requested, e.Attempts, e.Duplicate)
}

// ringFunc returns the unit translation and the number of unit steps for ring k (k >= 1).
type ringFunc func(k int) (dx, dy, steps int)

// squareRing walks floor((k+1)/2) steps per ring. The direction is positive when the
// step count is odd, and the axis alternates: x on odd rings, y on even rings.
func squareRing(k int) (dx, dy, steps int) {
	steps = (k + 1) / 2
	sign := 1
	if steps%2 == 0 {
		sign = -1
	}
	if k%2 == 0 {
		return 0, sign, steps
	}
	return sign, 0, steps
}

// Generate returns maxSteps distinct offsets spiraling outward in a square pattern
// from (0, 0). The first element is always the origin.
//
//	Generate(5) == [(0,0) (1,0) (1,1) (0,1) (-1,1)]
func Generate(maxSteps int) ([]GridOffset, error) {
	return generate(maxSteps, squareRing)
}

func generate(maxSteps int, ring ringFunc) ([]GridOffset, error) {
	if maxSteps < 1 {
		return nil, fmt.Errorf("max steps must be positive, got %d", maxSteps)
	}

	var dup GridOffset
	for attempt := 0; attempt <= MaxRestarts; attempt++ {
		offsets, repeated, ok := walk(maxSteps, ring)
		if ok {
			return offsets, nil
		}
		dup = repeated
	}

	return nil, &GenerationError{
		Requested: maxSteps,
		Attempts:  MaxRestarts + 1,
		Duplicate: dup,
	}
}

// walk runs one attempt with a freshly allocated accumulator. The accumulator is
// checked for repeats after every completed ring.
func walk(maxSteps int, ring ringFunc) ([]GridOffset, GridOffset, bool) {
	accum := make([]GridOffset, 1, maxSteps+maxSteps/2+1)
	seen := map[GridOffset]struct{}{{}: {}}

	pos := GridOffset{}
	for k := 1; len(accum) < maxSteps; k++ {
		dx, dy, steps := ring(k)
		if steps < 1 {
			return nil, pos, false
		}

		var repeated *GridOffset
		for i := 1; i <= steps; i++ {
			next := GridOffset{DX: pos.DX + i*dx, DY: pos.DY + i*dy}
			if _, ok := seen[next]; ok && repeated == nil {
				r := next
				repeated = &r
			}
			seen[next] = struct{}{}
			accum = append(accum, next)
		}
		if repeated != nil {
			return nil, *repeated, false
		}

		pos = accum[len(accum)-1]
	}

	// The last ring may overshoot the requested length.
	return accum[:maxSteps:maxSteps], GridOffset{}, true
}
