package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/smoothdyn/internal/curve"
	"github.com/san-kum/smoothdyn/internal/dynamo"
	"github.com/san-kum/smoothdyn/internal/sim"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Style     string             `json:"style"`
	Params    curve.Params       `json:"params"`
	Target    string             `json:"target"`
	Timestamp time.Time          `json:"timestamp"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Steps     int                `json:"steps"`
	Metrics   map[string]float64 `json:"metrics"`
}

var csvHeader = []string{"time", "target", "px", "py", "pz", "vx", "vy", "vz"}

// Save writes metadata.json and states.csv under a new run directory and
// returns the run id.
func (s *Store) Save(p curve.Params, target string, cfg sim.Config, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", p.Style, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Style:     p.Style,
		Params:    p,
		Target:    target,
		Timestamp: now,
		Dt:        cfg.Dt,
		Duration:  cfg.Duration,
		Steps:     result.StepsTaken,
		Metrics:   result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return "", err
	}
	if err := writeStates(csvFile, result); err != nil {
		return "", err
	}
	return runID, nil
}

// writeStates writes the trace as CSV and closes w. A failed close is
// reported, since that is where buffered data reaches the disk.
func writeStates(w io.WriteCloser, result *sim.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		w.Close()
		return err
	}

	for i, st := range result.States {
		row := []string{
			formatFloat(result.Times[i]),
			formatFloat(result.Targets[i]),
			formatFloat(st.Position.X), formatFloat(st.Position.Y), formatFloat(st.Position.Z),
			formatFloat(st.Velocity.X), formatFloat(st.Velocity.Y), formatFloat(st.Velocity.Z),
		}
		if err := cw.Write(row); err != nil {
			w.Close()
			return err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// List returns the metadata of every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTrace reads states.csv back into a Result. Metrics are taken from the
// run metadata when present.
func (s *Store) LoadTrace(runID string) (*sim.Result, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(csvHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	result := &sim.Result{Metrics: map[string]float64{}}
	if meta, err := s.Load(runID); err == nil && meta.Metrics != nil {
		result.Metrics = meta.Metrics
	}
	if len(records) < 2 {
		return result, nil
	}

	for line, record := range records[1:] {
		var vals [8]float64
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("states.csv line %d: %w", line+2, err)
			}
			vals[j] = v
		}
		result.Times = append(result.Times, vals[0])
		result.Targets = append(result.Targets, vals[1])
		result.States = append(result.States, dynamo.State{
			Position: dynamo.Vec3{X: vals[2], Y: vals[3], Z: vals[4]},
			Velocity: dynamo.Vec3{X: vals[5], Y: vals[6], Z: vals[7]},
		})
	}
	result.StepsTaken = len(result.States) - 1

	return result, nil
}
