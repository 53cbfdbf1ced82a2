package storage

import (
	"github.com/san-kum/orrery/internal/dynamo"
)

// Recorder is an observer that keeps every nth observed state.
type Recorder struct {
	every  int
	seen   int
	Times  []float64
	States []dynamo.State
}

func NewRecorder(every int) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{every: every}
}

func (r *Recorder) OnStep(x dynamo.State, t float64) {
	keep := r.seen%r.every == 0 || (len(r.States) > 0 && len(x) != len(r.States[len(r.States)-1]))
	r.seen++
	if !keep {
		return
	}
	r.Times = append(r.Times, t)
	r.States = append(r.States, x.Clone())
}

func (r *Recorder) Len() int { return len(r.States) }

// Width is the length of the widest recorded state.
func (r *Recorder) Width() int {
	w := 0
	for _, s := range r.States {
		w = max(w, len(s))
	}
	return w
}

// Rows converts the recording into plain slices.
func (r *Recorder) Rows() [][]float64 {
	rows := make([][]float64, len(r.States))
	for i, s := range r.States {
		rows[i] = s
	}
	return rows
}

func (r *Recorder) Reset() {
	r.seen = 0
	r.Times = nil
	r.States = nil
}
