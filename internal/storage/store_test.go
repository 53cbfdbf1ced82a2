package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/orrery/internal/dynamo"
)

func recording() *Recorder {
	rec := NewRecorder(1)
	rec.OnStep(dynamo.State{1, 0, 0, 1}, 0)
	rec.OnStep(dynamo.State{0.9, 0.1, -0.1, 1}, 86400)
	rec.OnStep(dynamo.State{0.8, 0.2, -0.2, 1, 5, 5, 0, 0}, 86400)
	return rec
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta := RunMetadata{
		Preset:     "kepler",
		Seed:       42,
		Timestep:   86400,
		Steps:      1,
		Integrator: "dop853",
		Bodies:     []string{"Sun", "Earth"},
		Metrics:    map[string]float64{"energy_drift": 1.5e-9},
	}

	runID, err := st.Save(meta, recording())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if !strings.HasPrefix(runID, "kepler_") {
		t.Errorf("unexpected run id %q", runID)
	}

	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Preset != "kepler" {
		t.Errorf("expected preset 'kepler', got '%s'", loaded.Preset)
	}
	if loaded.Seed != 42 {
		t.Errorf("expected seed 42, got %d", loaded.Seed)
	}
	if loaded.Metrics["energy_drift"] != 1.5e-9 {
		t.Errorf("expected drift 1.5e-9, got %g", loaded.Metrics["energy_drift"])
	}
	if len(loaded.Bodies) != 2 {
		t.Errorf("expected 2 body names, got %v", loaded.Bodies)
	}

	states, times, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}

	if len(states) != 3 || len(times) != 3 {
		t.Fatalf("expected 3 rows, got %d states and %d times", len(states), len(times))
	}
	if len(states[0]) != 4 || len(states[2]) != 8 {
		t.Errorf("ragged rows not preserved: %d and %d", len(states[0]), len(states[2]))
	}
	if states[1][0] != 0.9 || times[1] != 86400 {
		t.Errorf("values not exact: %v at %v", states[1], times[1])
	}

	rec, err := st.LoadRecording(runID)
	if err != nil {
		t.Fatalf("load recording failed: %v", err)
	}
	if rec.Len() != 3 || rec.Width() != 8 {
		t.Errorf("expected 3 rows of width 8, got %d of %d", rec.Len(), rec.Width())
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	for _, preset := range []string{"solar", "binary"} {
		if _, err := st.Save(RunMetadata{Preset: preset}, recording()); err != nil {
			t.Fatal(err)
		}
	}
	os.MkdirAll(filepath.Join(tmpDir, "junk"), 0755)

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Preset != "binary" {
		t.Errorf("expected newest run first, got %s", runs[0].Preset)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "none")).List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestRecorderEvery(t *testing.T) {
	rec := NewRecorder(3)
	for i := 0; i < 7; i++ {
		rec.OnStep(dynamo.State{float64(i), 0, 0, 0}, float64(i))
	}
	if rec.Len() != 3 {
		t.Fatalf("expected 3 samples, got %d", rec.Len())
	}
	if rec.Times[1] != 3 || rec.Times[2] != 6 {
		t.Errorf("unexpected sample times %v", rec.Times)
	}

	rec.OnStep(dynamo.State{0, 0, 0, 0, 1, 1, 1, 1}, 7)
	if rec.Len() != 4 {
		t.Error("insertion was not recorded")
	}

	x := dynamo.State{1, 2, 3, 4}
	rec.Reset()
	rec.OnStep(x, 0)
	x[0] = 99
	if rec.States[0][0] != 1 {
		t.Error("recorder aliases observed state")
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	meta := RunMetadata{Preset: "kepler", Integrator: "rk45", Steps: 2}

	if err := ExportJSON(&buf, meta, recording()); err != nil {
		t.Fatal(err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if data.Integrator != "rk45" || len(data.States) != 3 || len(data.Times) != 3 {
		t.Errorf("unexpected export %+v", data)
	}
}

func TestWriteCSVPadsRows(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, recording()); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header and 3 rows, got %d lines", len(lines))
	}
	if got := strings.Count(lines[0], ","); got != 8 {
		t.Errorf("expected 9 header columns, got %d", got+1)
	}
	if got := strings.Count(lines[1], ","); got != 8 {
		t.Errorf("expected padded row, got %q", lines[1])
	}
}
