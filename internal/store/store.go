// Package store keeps finished runs on disk, one directory per run with
// metadata.json and samples.csv.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/softbody/internal/experiment"
	"github.com/san-kum/softbody/internal/telemetry"
)

var ErrRunNotFound = errors.New("store: run not found")

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
)

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID          string                 `json:"id"`
	Scene       string                 `json:"scene"`
	Timestamp   time.Time              `json:"timestamp"`
	Seed        uint64                 `json:"seed"`
	Dt          float64                `json:"dt"`
	Steps       int                    `json:"steps"`
	Integrator  string                 `json:"integrator"`
	BondSolver  string                 `json:"bond_solver"`
	Params      map[string]float64     `json:"params,omitempty"`
	Checkpoints []telemetry.Checkpoint `json:"checkpoints,omitempty"`
	Summary     telemetry.Summary      `json:"summary"`
	Metrics     map[string]float64     `json:"metrics"`
	ElapsedMS   int64                  `json:"elapsed_ms"`
}

func metadataFor(id string, ts time.Time, res *experiment.Result, params map[string]float64) RunMetadata {
	metrics := make(map[string]float64)
	for _, name := range telemetry.MetricNames() {
		if v, ok := res.Summary.Metric(name); ok {
			metrics[name] = v
		}
	}
	return RunMetadata{
		ID:          id,
		Scene:       res.Scene,
		Timestamp:   ts,
		Seed:        res.Seed,
		Dt:          res.Dt,
		Steps:       res.Steps,
		Integrator:  res.World.Integrator,
		BondSolver:  res.World.BondSolver,
		Params:      params,
		Checkpoints: res.Checkpoints,
		Summary:     res.Summary,
		Metrics:     metrics,
		ElapsedMS:   res.Elapsed.Milliseconds(),
	}
}

// Save writes res under a fresh run id and returns the id.
func (s *Store) Save(res *experiment.Result, params map[string]float64) (string, error) {
	ts := s.now()
	runID := fmt.Sprintf("%s_%d", res.Scene, ts.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := metadataFor(runID, ts, res, params)
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", fmt.Errorf("writing metadata: %w", err)
	}

	f, err := os.Create(filepath.Join(runDir, samplesFile))
	if err != nil {
		return "", err
	}
	defer f.Close()
	samples := res.Samples
	if samples == nil {
		samples = []telemetry.Sample{}
	}
	if err := gocsv.MarshalFile(&samples, f); err != nil {
		return "", fmt.Errorf("writing samples: %w", err)
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// List returns stored runs, oldest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(entries))
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
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadSamples(runID string) ([]telemetry.Sample, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()

	var samples []telemetry.Sample
	if err := gocsv.UnmarshalFile(f, &samples); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return []telemetry.Sample{}, nil
		}
		return nil, fmt.Errorf("run %s samples: %w", runID, err)
	}
	return samples, nil
}

// ExportData is the JSON export of a stored run.
type ExportData struct {
	Run     RunMetadata        `json:"run"`
	Samples []telemetry.Sample `json:"samples"`
}

func (s *Store) ExportJSON(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: *meta, Samples: samples})
}

func (s *Store) ExportCSV(runID string, w io.Writer) error {
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return err
	}
	return gocsv.Marshal(&samples, w)
}
