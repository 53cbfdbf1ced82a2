package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/orrery/internal/dynamo"
)

// OrbitClosure measures how far one body is from where it started, as a
// fraction of its starting distance from the primary. After a whole number
// of periods a closed orbit reads close to zero.
type OrbitClosure struct {
	name    string
	body    int
	started bool
	x0, y0  float64
	r0      float64
	value   float64
}

func NewOrbitClosure(body int) *OrbitClosure {
	return &OrbitClosure{
		name: fmt.Sprintf("orbit_closure_%d", body),
		body: body,
	}
}

func (o *OrbitClosure) Name() string { return o.name }

func (o *OrbitClosure) Observe(x dynamo.State, t float64) {
	k := o.body * dynamo.BlockSize
	if o.body < 1 || k+1 >= len(x) {
		return
	}
	if !o.started {
		o.started = true
		o.x0, o.y0 = x[k], x[k+1]
		o.r0 = math.Hypot(x[k]-x[0], x[k+1]-x[1])
		return
	}
	if o.r0 > 0 {
		o.value = math.Hypot(x[k]-o.x0, x[k+1]-o.y0) / o.r0
	}
}

func (o *OrbitClosure) Value() float64 { return o.value }

func (o *OrbitClosure) Reset() {
	o.started = false
	o.x0, o.y0, o.r0 = 0, 0, 0
	o.value = 0
}
