package physics

import (
	"fmt"

	"github.com/san-kum/orrery/internal/dynamo"
)

// Encode flattens bodies into 4-blocks (x, y, vx, vy) in slice order.
func Encode(bodies []Body) dynamo.State {
	x := make(dynamo.State, len(bodies)*dynamo.BlockSize)
	for i, b := range bodies {
		k := i * dynamo.BlockSize
		x[k] = b.Pos.X
		x[k+1] = b.Pos.Y
		x[k+2] = b.Vel.X
		x[k+3] = b.Vel.Y
	}
	return x
}

// Decode writes each 4-block of x into the matching body in place. A length
// mismatch is a caller bug and leaves every body untouched.
func Decode(x dynamo.State, bodies []Body) error {
	if len(x)%dynamo.BlockSize != 0 || len(x)/dynamo.BlockSize != len(bodies) {
		return fmt.Errorf("state length %d for %d bodies: %w", len(x), len(bodies), dynamo.ErrDimensionMismatch)
	}
	for i := range bodies {
		k := i * dynamo.BlockSize
		bodies[i].Pos.X = x[k]
		bodies[i].Pos.Y = x[k+1]
		bodies[i].Vel.X = x[k+2]
		bodies[i].Vel.Y = x[k+3]
	}
	return nil
}
