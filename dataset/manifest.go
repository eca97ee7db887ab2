package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/etnz/cadobr"
	"github.com/google/uuid"
)

// ManifestFile is the name of the run manifest written next to the collections.
const ManifestFile = "manifest.json"

// Manifest describes the run that produced a dataset.
type Manifest struct {
	RunID      string         `json:"run_id"`
	CreatedAt  time.Time      `json:"created_at"`
	StopAfter  string         `json:"stop_after"`
	Complete   bool           `json:"complete"`
	Normalized string         `json:"input_normalized,omitempty"`
	Monetary   string         `json:"input_monetary,omitempty"`
	Window     int            `json:"novation_window_days,omitempty"`
	Counts     map[string]int `json:"counts"`
}

// NewManifest starts the manifest of a run with a new run id.
func NewManifest() *Manifest {
	return &Manifest{
		RunID:     uuid.NewString(),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

// Finish records the outcome of the run: the last layer run and the counts of ds.
func (m *Manifest) Finish(ds *cadobr.Dataset, stop string, complete bool) {
	m.StopAfter = stop
	m.Complete = complete
	m.Counts = Counts(ds)
}

// WriteManifest writes m as indented JSON into dir.
func WriteManifest(dir string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("could not write manifest: %w", err)
	}
	return nil
}

// ReadManifest reads the manifest of the dataset in dir.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}
	m := new(Manifest)
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("format error in %s: %w", ManifestFile, err)
	}
	return m, nil
}
