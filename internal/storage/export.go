package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/pairmass/internal/hist"
)

type ExportData struct {
	Run        RunMetadata     `json:"run"`
	Histograms []hist.Snapshot `json:"histograms"`
}

// ExportJSON writes a run and its histograms as one indented document.
func ExportJSON(w io.Writer, meta RunMetadata, snaps []hist.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: meta, Histograms: snaps})
}
