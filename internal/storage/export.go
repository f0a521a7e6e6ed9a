package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/smoothdyn/internal/sim"
)

type ExportData struct {
	Meta       RunMetadata  `json:"meta"`
	Times      []float64    `json:"times"`
	Targets    []float64    `json:"targets"`
	Positions  [][3]float64 `json:"positions"`
	Velocities [][3]float64 `json:"velocities"`
}

// ExportJSON writes a run's metadata and full trace to w.
func ExportJSON(w io.Writer, meta RunMetadata, result *sim.Result) error {
	data := ExportData{
		Meta:       meta,
		Times:      result.Times,
		Targets:    result.Targets,
		Positions:  make([][3]float64, len(result.States)),
		Velocities: make([][3]float64, len(result.States)),
	}

	for i, s := range result.States {
		data.Positions[i] = [3]float64{s.Position.X, s.Position.Y, s.Position.Z}
		data.Velocities[i] = [3]float64{s.Velocity.X, s.Velocity.Y, s.Velocity.Z}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
