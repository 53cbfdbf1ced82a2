package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

type ExportData struct {
	Preset     string             `json:"preset"`
	Integrator string             `json:"integrator"`
	Timestep   float64            `json:"timestep"`
	Steps      int                `json:"steps"`
	Bodies     []string           `json:"bodies"`
	Times      []float64          `json:"times"`
	States     [][]float64        `json:"states"`
	Metrics    map[string]float64 `json:"metrics"`
}

func ExportJSON(w io.Writer, meta RunMetadata, rec *Recorder) error {
	data := ExportData{
		Preset:     meta.Preset,
		Integrator: meta.Integrator,
		Timestep:   meta.Timestep,
		Steps:      meta.Steps,
		Bodies:     meta.Bodies,
		Times:      rec.Times,
		States:     rec.Rows(),
		Metrics:    meta.Metrics,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteCSV writes a time column followed by x0..xn. Short rows are padded
// with empty fields.
func WriteCSV(out io.Writer, rec *Recorder) error {
	w := csv.NewWriter(out)

	if rec.Len() == 0 {
		w.Flush()
		return w.Error()
	}

	width := rec.Width()
	header := []string{"time"}
	for i := 0; i < width; i++ {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, state := range rec.States {
		row := make([]string, 0, width+1)
		row = append(row, strconv.FormatFloat(rec.Times[i], 'g', -1, 64))
		for _, val := range state {
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		for len(row) < width+1 {
			row = append(row, "")
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
