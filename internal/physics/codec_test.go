package physics

import (
	"errors"
	"testing"

	"github.com/san-kum/orrery/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestEncodeLayout(t *testing.T) {
	bodies := []Body{
		{Pos: r2.Vec{X: 1, Y: 2}, Vel: r2.Vec{X: 3, Y: 4}, Mass: 1},
		{Pos: r2.Vec{X: 5, Y: 6}, Vel: r2.Vec{X: 7, Y: 8}, Mass: 1},
	}

	x := Encode(bodies)
	want := dynamo.State{1, 2, 3, 4, 5, 6, 7, 8}
	if len(x) != len(want) {
		t.Fatalf("len = %d, want %d", len(x), len(want))
	}
	for i := range want {
		if x[i] != want[i] {
			t.Errorf("x[%d] = %g, want %g", i, x[i], want[i])
		}
	}
}

func TestDecodeWritesBack(t *testing.T) {
	bodies := make([]Body, 2)
	if err := Decode(dynamo.State{1, 2, 3, 4, 5, 6, 7, 8}, bodies); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if bodies[0].Pos != (r2.Vec{X: 1, Y: 2}) || bodies[1].Vel != (r2.Vec{X: 7, Y: 8}) {
		t.Errorf("decoded %+v", bodies)
	}
}

func TestDecodeRejectsMismatch(t *testing.T) {
	tests := []struct {
		name   string
		x      dynamo.State
		bodies int
	}{
		{"not a multiple of four", dynamo.State{1, 2, 3, 4, 5}, 1},
		{"too short", dynamo.State{1, 2, 3, 4}, 2},
		{"too long", dynamo.State{1, 2, 3, 4, 5, 6, 7, 8}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bodies := make([]Body, tt.bodies)
			err := Decode(tt.x, bodies)
			if !errors.Is(err, dynamo.ErrDimensionMismatch) {
				t.Fatalf("expected ErrDimensionMismatch, got %v", err)
			}
			for _, b := range bodies {
				if b.Pos != (r2.Vec{}) {
					t.Error("body modified on failed decode")
				}
			}
		})
	}
}
