package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/san-kum/pairmass/internal/particle"
	"github.com/san-kum/pairmass/internal/sim"
)

func smallRun(t *testing.T) (sim.Config, *sim.Result) {
	t.Helper()
	s, err := sim.New(particle.Standard(),
		[]sim.Species{
			{Name: particle.PionPlus, Probability: 0.4},
			{Name: particle.PionMinus, Probability: 0.4},
			{Name: particle.KaonPlus, Probability: 0.05},
			{Name: particle.KaonMinus, Probability: 0.05},
			{Name: particle.ProtonPlus, Probability: 0.045},
			{Name: particle.ProtonMinus, Probability: 0.045},
			{Name: particle.KaonStar, Probability: 0.01},
		},
		[]sim.Decay{
			{Parent: particle.KaonStar, Daughters: [2]string{particle.PionPlus, particle.KaonMinus}, Branching: 0.5},
			{Parent: particle.KaonStar, Daughters: [2]string{particle.PionMinus, particle.KaonPlus}, Branching: 0.5},
		})
	if err != nil {
		t.Fatal(err)
	}
	cfg := sim.DefaultConfig()
	cfg.Iterations = 50
	cfg.Seed = 42
	res, err := s.Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	return cfg, res
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, res := smallRun(t)
	checks := sim.Validate(res, 3)
	meta := NewMetadata(cfg, 3, res, checks)

	runID, err := st.Save(meta, res.Histograms.Snapshots())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.ID != runID {
		t.Errorf("expected id %s, got %s", runID, loaded.ID)
	}
	if loaded.Seed != 42 {
		t.Errorf("expected seed 42, got %d", loaded.Seed)
	}
	if loaded.Events != 50 {
		t.Errorf("expected 50 events, got %d", loaded.Events)
	}
	if len(loaded.Species) != 7 || len(loaded.Checks) != len(checks) {
		t.Errorf("expected 7 species and %d checks, got %d and %d", len(checks), len(loaded.Species), len(loaded.Checks))
	}

	snaps, err := st.LoadHistograms(runID)
	if err != nil {
		t.Fatalf("load histograms failed: %v", err)
	}
	h, err := sim.HistogramsFromSnapshots(snaps)
	if err != nil {
		t.Fatal(err)
	}
	if h.Channels.All.Entries() != res.Histograms.Channels.All.Entries() {
		t.Errorf("expected %d pair entries, got %d", res.Histograms.Channels.All.Entries(), h.Channels.All.Entries())
	}

	// validating the stored run reproduces the stored verdicts
	again := sim.Validate(loaded.Result(h), 3)
	for i := range checks {
		if again[i].Passed != checks[i].Passed || again[i].Observed != checks[i].Observed {
			t.Errorf("check %s differs after reload", checks[i].Name)
		}
	}
}

func TestHistogramsCSV(t *testing.T) {
	st := New(t.TempDir())
	_, res := smallRun(t)
	runID, err := st.Save(NewMetadata(sim.DefaultConfig(), 3, res, nil), res.Histograms.Snapshots())
	if err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(st.CSVPath(runID))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	bins := 0
	for _, h := range res.Histograms.List() {
		bins += h.Bins()
	}
	if len(records) != bins+1 {
		t.Errorf("expected %d rows, got %d", bins+1, len(records))
	}
	if records[0][0] != "histogram" || records[1][0] != "species" {
		t.Errorf("unexpected leading rows %v %v", records[0], records[1])
	}
}

func TestListAndLatest(t *testing.T) {
	st := New(t.TempDir())

	if _, err := st.Latest(); !errors.Is(err, ErrNoRuns) {
		t.Errorf("expected ErrNoRuns, got %v", err)
	}

	_, res := smallRun(t)
	older := NewMetadata(sim.DefaultConfig(), 3, res, nil)
	older.Timestamp = time.Now().Add(-time.Hour)
	newer := NewMetadata(sim.DefaultConfig(), 3, res, nil)

	newID, err := st.Save(newer, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := st.Save(older, nil); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	latest, err := st.Latest()
	if err != nil {
		t.Fatal(err)
	}
	if latest != newID {
		t.Errorf("expected latest %s, got %s", newID, latest)
	}
}

func TestListMissingDir(t *testing.T) {
	st := New(t.TempDir() + "/missing")
	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestExportJSON(t *testing.T) {
	_, res := smallRun(t)
	var buf bytes.Buffer
	meta := NewMetadata(sim.DefaultConfig(), 3, res, nil)
	if err := ExportJSON(&buf, meta, res.Histograms.Snapshots()); err != nil {
		t.Fatal(err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatal(err)
	}
	if len(data.Histograms) != len(res.Histograms.List()) {
		t.Errorf("expected %d histograms, got %d", len(res.Histograms.List()), len(data.Histograms))
	}
	if data.Run.Events != 50 {
		t.Errorf("expected 50 events, got %d", data.Run.Events)
	}
}
