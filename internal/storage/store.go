// Package storage persists SC-E run records and structured mesh
// snapshots under a data directory.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/facette/natsort"
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

// RunMetadata describes one SC-E run.
type RunMetadata struct {
	ID           string             `json:"id"`
	Model        string             `json:"model"`
	Timestamp    time.Time          `json:"timestamp"`
	Seed         int64              `json:"seed"`
	DtOrbit      float64            `json:"dt_orbit"`
	DtEffective  float64            `json:"dt_effective"`
	Subcycle     int                `json:"subcycle"`
	Cells        int                `json:"cells"`
	TotalCurrent float64            `json:"total_current"`
	Diagnostics  map[string]float64 `json:"diagnostics"`
}

// SaveRun writes metadata.json and profiles.csv (grid, J, E columns) for
// a completed run and returns the run ID.
func (s *Store) SaveRun(meta RunMetadata, grid, j, e []float64) (string, error) {
	runID := fmt.Sprintf("%s_%d", meta.Model, time.Now().Unix())
	meta.ID = runID
	meta.Timestamp = time.Now()

	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
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

	profFile, err := os.Create(filepath.Join(runDir, "profiles.csv"))
	if err != nil {
		return "", err
	}
	defer profFile.Close()

	w := csv.NewWriter(profFile)
	if err := w.Write([]string{"x", "j", "e"}); err != nil {
		return "", err
	}
	for i := range grid {
		rec := []string{
			strconv.FormatFloat(grid[i], 'e', -1, 64),
			strconv.FormatFloat(j[i], 'e', -1, 64),
			strconv.FormatFloat(e[i], 'e', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}
	w.Flush()
	return runID, w.Error()
}

// ListRuns returns run IDs in natural sort order.
func (s *Store) ListRuns() ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	natsort.Sort(ids)
	return ids, nil
}

// LoadRun reads a run's metadata and profiles.
func (s *Store) LoadRun(runID string) (RunMetadata, [][]float64, error) {
	var meta RunMetadata
	runDir := filepath.Join(s.baseDir, runID)

	data, err := os.ReadFile(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return meta, nil, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, nil, err
	}

	f, err := os.Open(filepath.Join(runDir, "profiles.csv"))
	if err != nil {
		return meta, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return meta, nil, err
	}
	if len(records) < 2 {
		return meta, nil, fmt.Errorf("storage: run %s has no profile rows", runID)
	}

	cols := make([][]float64, 3)
	for i := range cols {
		cols[i] = make([]float64, 0, len(records)-1)
	}
	for _, rec := range records[1:] {
		for i := 0; i < 3 && i < len(rec); i++ {
			v, err := strconv.ParseFloat(rec[i], 64)
			if err != nil {
				return meta, nil, fmt.Errorf("storage: bad profile value %q: %w", rec[i], err)
			}
			cols[i] = append(cols[i], v)
		}
	}
	return meta, cols, nil
}
