package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/smoothdyn/internal/curve"
	"github.com/san-kum/smoothdyn/internal/dynamo"
	"github.com/san-kum/smoothdyn/internal/sim"
)

func testResult() *sim.Result {
	return &sim.Result{
		Times:   []float64{0.0, 0.01},
		Targets: []float64{1, 1},
		States: []dynamo.State{
			{},
			{Position: dynamo.Vec3{X: 0.1, Y: 0.2, Z: 1.0 / 3}, Velocity: dynamo.Vec3{X: 2}},
		},
		Metrics:    map[string]float64{"overshoot": 0.25},
		StepsTaken: 1,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	p := curve.MustNew(curve.Mechanical{F: 2, Z: 0.5})
	runID, err := st.Save(p, "step", sim.Config{Dt: 0.01, Duration: 0.01}, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Style != "mechanical" {
		t.Errorf("expected style 'mechanical', got '%s'", meta.Style)
	}
	if meta.Params.K1 != p.K1 || meta.Params.R != 2 {
		t.Errorf("params not preserved: %+v", meta.Params)
	}
	if meta.Metrics["overshoot"] != 0.25 {
		t.Errorf("expected overshoot 0.25, got %f", meta.Metrics["overshoot"])
	}

	trace, err := st.LoadTrace(runID)
	if err != nil {
		t.Fatalf("load trace failed: %v", err)
	}
	if len(trace.States) != 2 || len(trace.Times) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(trace.States))
	}
	if trace.States[1] != testResult().States[1] {
		t.Errorf("state not preserved exactly: %+v", trace.States[1])
	}
	if trace.Metrics["overshoot"] != 0.25 {
		t.Error("expected metrics from metadata")
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	p := curve.MustNew(curve.SmoothDamped{})
	for i := 0; i < 2; i++ {
		if _, err := st.Save(p, "step", sim.Config{Dt: 0.01, Duration: 0.01}, testResult()); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v (err %v)", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(curve.MustNew(curve.Linear{}), "constant", sim.Config{Dt: 0.01, Duration: 0.01}, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	for _, name := range []string{"metadata.json", "states.csv"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

type closeFailer struct {
	bytes.Buffer
	closed bool
}

var errDiskFull = errors.New("disk full")

func (c *closeFailer) Close() error {
	c.closed = true
	return errDiskFull
}

func TestWriteStatesReportsCloseError(t *testing.T) {
	w := &closeFailer{}
	err := writeStates(w, testResult())
	if !errors.Is(err, errDiskFull) {
		t.Fatalf("expected close error, got %v", err)
	}
	if !w.closed {
		t.Error("writer not closed")
	}
	if !strings.HasPrefix(w.String(), "time,target,px,py,pz,vx,vy,vz\n") {
		t.Errorf("unexpected csv %q", w.String())
	}
	if lines := strings.Count(w.String(), "\n"); lines != 3 {
		t.Errorf("expected header plus 2 rows, got %d lines", lines)
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	meta := RunMetadata{ID: "smooth_1", Style: "smooth"}
	if err := ExportJSON(&buf, meta, testResult()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if data.Meta.ID != "smooth_1" || len(data.Positions) != 2 {
		t.Errorf("unexpected export %+v", data)
	}
	if data.Velocities[1][0] != 2 {
		t.Errorf("expected vx 2, got %f", data.Velocities[1][0])
	}
}
