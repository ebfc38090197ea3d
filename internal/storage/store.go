// Package storage archives engine.Engine runs to disk: a JSON metadata
// sidecar plus the engine's own binary telemetry file, keyed by run ID.
// Adapted from the teacher's internal/storage.Store, which paired a JSON
// sidecar with a hand-written CSV of raw state/control columns; this
// rewrite swaps the CSV for internal/telemetry's binary wire format, since
// engine.Engine already produces that format directly (spec.md §6.3) and
// there is no reason to re-serialise to CSV on the way to disk. This is
// additive tooling, not a spec.md component — engine.Engine never depends
// on this package.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/san-kum/rigidsim/internal/engine"
	"github.com/san-kum/rigidsim/internal/telemetry"
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

// RunMetadata is the JSON sidecar written alongside a run's telemetry file.
type RunMetadata struct {
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Integrator string             `json:"integrator"`
	Controller string             `json:"controller"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes eng's current telemetry and a metadata sidecar under a fresh
// run directory, returning the run ID.
func (s *Store) Save(model string, dt, duration float64, seed int64, integrator, controller string, eng *engine.Engine, metrics map[string]float64) (string, error) {
	runID := fmt.Sprintf("%s_%d", model, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Model:      model,
		Timestamp:  time.Now(),
		Seed:       seed,
		Dt:         dt,
		Duration:   duration,
		Integrator: integrator,
		Controller: controller,
		Metrics:    metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	telFile, err := os.Create(filepath.Join(runDir, "telemetry.bin"))
	if err != nil {
		return "", err
	}
	defer telFile.Close()

	if err := eng.WriteLogBinary(telFile); err != nil {
		return "", err
	}

	return runID, nil
}

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

// LoadTelemetry reads back a run's binary telemetry file (spec.md §6.4
// getLogData shape).
func (s *Store) LoadTelemetry(runID string) (header []string, matrix [][]float64, err error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "telemetry.bin"))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return telemetry.ReadBinary(f)
}
