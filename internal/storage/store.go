package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/pairmass/internal/hist"
	"github.com/san-kum/pairmass/internal/sim"
	"github.com/san-kum/pairmass/internal/validate"
)

const (
	metadataFile       = "metadata.json"
	histogramsCSVFile  = "histograms.csv"
	histogramsJSONFile = "histograms.json"
)

// ErrNoRuns is returned by Latest on an empty store.
var ErrNoRuns = errors.New("storage: no runs stored")

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
	ID         string             `json:"id"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Iterations int                `json:"iterations"`
	Primaries  int                `json:"primaries"`
	Workers    int                `json:"workers"`
	Events     int64              `json:"events"`
	Skipped    int64              `json:"skipped"`
	Pairs      int64              `json:"pairs"`
	Decays     int64              `json:"decays"`
	Tolerance  float64            `json:"tolerance"`
	Elapsed    float64            `json:"elapsed_seconds"`
	Species    []sim.SpeciesCount `json:"species"`
	Checks     []validate.Check   `json:"checks"`
	Binning    sim.Binning        `json:"binning"`
}

// NewMetadata describes a finished run.
func NewMetadata(cfg sim.Config, tol float64, res *sim.Result, checks []validate.Check) RunMetadata {
	return RunMetadata{
		Timestamp:  time.Now(),
		Seed:       cfg.Seed,
		Iterations: cfg.Iterations,
		Primaries:  cfg.Primaries,
		Workers:    cfg.Workers,
		Events:     res.Events,
		Skipped:    res.Skipped,
		Pairs:      res.Pairs,
		Decays:     res.Decays,
		Tolerance:  tol,
		Elapsed:    res.Elapsed.Seconds(),
		Species:    res.Species,
		Checks:     checks,
		Binning:    cfg.Binning,
	}
}

// Result rebuilds enough of a run result to validate or plot it again.
func (m *RunMetadata) Result(h *sim.Histograms) *sim.Result {
	return &sim.Result{
		Histograms: h,
		Species:    m.Species,
		Primaries:  m.Primaries,
		Events:     m.Events,
		Skipped:    m.Skipped,
		Pairs:      m.Pairs,
		Decays:     m.Decays,
		Elapsed:    time.Duration(m.Elapsed * float64(time.Second)),
	}
}

// Save writes a new run directory and returns its id.
func (s *Store) Save(meta RunMetadata, snaps []hist.Snapshot) (string, error) {
	runID := fmt.Sprintf("run_%s_%s", meta.Timestamp.Format("20060102T150405"), uuid.NewString()[:8])
	meta.ID = runID
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, histogramsJSONFile), snaps); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, histogramsCSVFile))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := WriteCSV(f, snaps); err != nil {
		return "", err
	}
	return runID, f.Close()
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

// WriteCSV writes the histograms in long format, one row per bin.
func WriteCSV(w io.Writer, snaps []hist.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"histogram", "title", "bin", "low", "high", "content", "error"}); err != nil {
		return err
	}
	for _, s := range snaps {
		for i := range s.Counts {
			row := []string{
				s.Name,
				s.Title,
				strconv.Itoa(i + 1),
				strconv.FormatFloat(s.Edges[i], 'f', 6, 64),
				strconv.FormatFloat(s.Edges[i+1], 'f', 6, 64),
				strconv.FormatFloat(s.Counts[i], 'f', -1, 64),
				strconv.FormatFloat(s.Errors[i], 'f', 6, 64),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// List returns the stored runs, oldest first.
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

// Latest returns the id of the most recent run.
func (s *Store) Latest() (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", ErrNoRuns
	}
	return runs[len(runs)-1].ID, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadHistograms(runID string) ([]hist.Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, histogramsJSONFile))
	if err != nil {
		return nil, err
	}

	var snaps []hist.Snapshot
	if err := json.Unmarshal(data, &snaps); err != nil {
		return nil, err
	}
	return snaps, nil
}

// CSVPath returns the location of the bin table of a run.
func (s *Store) CSVPath(runID string) string {
	return filepath.Join(s.baseDir, runID, histogramsCSVFile)
}
