// Package dataset persists a reconciled dataset as nine JSON Lines
// collections, one record per line, plus a run manifest.
package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/etnz/cadobr"
)

// Collection file names, in writing order.
const (
	Documents          = "documents.jsonl"
	Parties            = "parties.jsonl"
	Properties         = "properties.jsonl"
	Operations         = "operations.jsonl"
	Obligations        = "obligations.jsonl"
	PropertyEvents     = "property_events.jsonl"
	Links              = "links.jsonl"
	Pendencies         = "pendencies.jsonl"
	NovationCandidates = "novation_candidates.jsonl"
)

// Files lists every collection of a complete dataset.
var Files = []string{
	Documents,
	Parties,
	Properties,
	Operations,
	Obligations,
	PropertyEvents,
	Links,
	Pendencies,
	NovationCandidates,
}

// maxLine bounds a single record when reading.
const maxLine = 16 << 20

// Write writes the nine collections of ds into dir, creating it if needed.
// Records are written in the order they have in ds, which is deterministic.
func Write(dir string, ds *cadobr.Dataset) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("could not create dataset directory %q: %w", dir, err)
	}
	return errors.Join(
		writeFile(dir, Documents, ds.Documents),
		writeFile(dir, Parties, ds.Parties),
		writeFile(dir, Properties, ds.Properties),
		writeFile(dir, Operations, ds.Operations),
		writeFile(dir, Obligations, ds.Obligations),
		writeFile(dir, PropertyEvents, ds.PropertyEvents),
		writeFile(dir, Links, ds.Links),
		writeFile(dir, Pendencies, ds.Pendencies),
		writeFile(dir, NovationCandidates, ds.NovationCandidates),
	)
}

func writeFile[T any](dir, name string, records []*T) error {
	var buf bytes.Buffer
	if err := Encode(&buf, records); err != nil {
		return fmt.Errorf("could not encode %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("could not write %s: %w", name, err)
	}
	return nil
}

// Encode writes records to w, one JSON object per line.
func Encode[T any](w io.Writer, records []*T) error {
	for _, r := range records {
		line, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	return nil
}

// Decode reads records written by Encode. Empty lines are skipped.
func Decode[T any](r io.Reader) ([]*T, error) {
	var out []*T
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	for n := 1; scanner.Scan(); n++ {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		v := new(T)
		if err := json.Unmarshal(line, v); err != nil {
			return nil, fmt.Errorf("format error on line %d: %w", n, err)
		}
		out = append(out, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Read loads the collections found in dir. A missing collection reads as empty;
// use Missing to tell a partial dataset apart.
func Read(dir string) (*cadobr.Dataset, error) {
	ds := new(cadobr.Dataset)
	var err error
	if ds.Documents, err = readFile[cadobr.DocumentRecord](dir, Documents); err != nil {
		return nil, err
	}
	if ds.Parties, err = readFile[cadobr.Party](dir, Parties); err != nil {
		return nil, err
	}
	if ds.Properties, err = readFile[cadobr.Property](dir, Properties); err != nil {
		return nil, err
	}
	if ds.Operations, err = readFile[cadobr.Operation](dir, Operations); err != nil {
		return nil, err
	}
	if ds.Obligations, err = readFile[cadobr.Obligation](dir, Obligations); err != nil {
		return nil, err
	}
	if ds.PropertyEvents, err = readFile[cadobr.PropertyEvent](dir, PropertyEvents); err != nil {
		return nil, err
	}
	if ds.Links, err = readFile[cadobr.Link](dir, Links); err != nil {
		return nil, err
	}
	if ds.Pendencies, err = readFile[cadobr.Pendency](dir, Pendencies); err != nil {
		return nil, err
	}
	if ds.NovationCandidates, err = readFile[cadobr.NovationCandidate](dir, NovationCandidates); err != nil {
		return nil, err
	}
	return ds, nil
}

func readFile[T any](dir, name string) ([]*T, error) {
	f, err := os.Open(filepath.Join(dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	records, err := Decode[T](f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return records, nil
}

// Missing returns the collections absent from dir, in writing order.
func Missing(dir string) []string {
	var missing []string
	for _, name := range Files {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			missing = append(missing, name)
		}
	}
	return missing
}

// Counts returns the number of records per collection file name.
func Counts(ds *cadobr.Dataset) map[string]int {
	return map[string]int{
		Documents:          len(ds.Documents),
		Parties:            len(ds.Parties),
		Properties:         len(ds.Properties),
		Operations:         len(ds.Operations),
		Obligations:        len(ds.Obligations),
		PropertyEvents:     len(ds.PropertyEvents),
		Links:              len(ds.Links),
		Pendencies:         len(ds.Pendencies),
		NovationCandidates: len(ds.NovationCandidates),
	}
}
