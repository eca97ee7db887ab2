// Package reconcile consolidates normalized and valued documents into a
// dataset, through five layers run in strict order:
//
//	A  index documents, parties, properties and operations
//	B  build obligations from the liens of property deeds
//	C  build the timeline of each property
//	D  link operations to properties and parties, record pendencies
//	E  detect novation candidates
//
// Facts that cannot be resolved become pendencies in the dataset. Only missing
// input directories and invariant violations stop a run.
package reconcile

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"runtime"
	"slices"
	"time"

	"github.com/etnz/cadobr"
)

var (
	// ErrMissingInput is returned when an input directory does not exist.
	ErrMissingInput = errors.New("missing input directory")
	// ErrInvariant is returned when a consolidated record breaks an identity invariant.
	ErrInvariant = errors.New("invariant violation")
)

// DefaultWindow is the default number of days a new registration may follow
// a discharge to be a novation candidate.
const DefaultWindow = 180

// Input stages, as recorded in document ids.
const (
	StageNormalized = "normalized"
	StageMonetary   = "monetary"
)

// Reconciler runs the layers over a normalized tree and its valued counterpart.
type Reconciler struct {
	Normalized string // root of normalized documents
	Monetary   string // root of documents valued by the monetary stage
	Pattern    string // glob on file names, "*.json" when empty
	Window     int    // novation window in days, DefaultWindow when zero
	Workers    int    // parallel document reads, GOMAXPROCS when zero
	Logger     *slog.Logger

	// Checkpoint, when set, receives the dataset built so far after each layer.
	Checkpoint func(Stage, *cadobr.Dataset) error
}

// Run executes layers A to stop and returns the dataset.
func (r *Reconciler) Run(ctx context.Context, stop Stage) (*cadobr.Dataset, error) {
	if stop < StageA || stop > StageE {
		return nil, fmt.Errorf("invalid stage %v", stop)
	}
	for _, dir := range []string{r.Normalized, r.Monetary} {
		if err := requireDir(dir); err != nil {
			return nil, err
		}
	}

	s := newState(r)
	layers := []struct {
		stage Stage
		run   func(context.Context) error
	}{
		{StageA, s.index},
		{StageB, s.buildObligations},
		{StageC, s.buildTimeline},
		{StageD, s.buildLinks},
		{StageE, s.detectNovations},
	}
	for _, l := range layers {
		if l.stage > stop {
			break
		}
		start := time.Now()
		if err := l.run(ctx); err != nil {
			return nil, fmt.Errorf("layer %v (%s): %w", l.stage, l.stage.Title(), err)
		}
		s.log.Info("layer done", "layer", l.stage.String(), "title", l.stage.Title(), "elapsed", time.Since(start))
		if r.Checkpoint != nil {
			if err := r.Checkpoint(l.stage, s.dataset()); err != nil {
				return nil, fmt.Errorf("checkpoint after layer %v: %w", l.stage, err)
			}
		}
	}
	return s.dataset(), nil
}

func requireDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("%w: no directory given", ErrMissingInput)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMissingInput, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %q is not a directory", ErrMissingInput, dir)
	}
	return nil
}

// state holds the registries built by the layers of one run.
type state struct {
	normalized, monetary, pattern string
	window, workers               int
	log                           *slog.Logger

	sources    []*source // readable normalized documents, by path
	documents  []*cadobr.DocumentRecord
	parties    map[string]*cadobr.Party
	properties map[string]*cadobr.Property
	operations map[string]*cadobr.Operation

	obligations  []*cadobr.Obligation
	obligationBy map[string]*cadobr.Obligation
	events       []*cadobr.PropertyEvent
	eventIDs     map[string]bool
	links        []*cadobr.Link
	linkIDs      map[string]bool
	pendencies   []*cadobr.Pendency
	pendencyIDs  map[string]bool
	novations    []*cadobr.NovationCandidate
}

// source is a normalized document and its catalog entry.
type source struct {
	cadobr.Loaded
	record *cadobr.DocumentRecord
}

func newState(r *Reconciler) *state {
	s := &state{
		normalized:   r.Normalized,
		monetary:     r.Monetary,
		pattern:      r.Pattern,
		window:       r.Window,
		workers:      r.Workers,
		log:          r.Logger,
		parties:      make(map[string]*cadobr.Party),
		properties:   make(map[string]*cadobr.Property),
		operations:   make(map[string]*cadobr.Operation),
		obligationBy: make(map[string]*cadobr.Obligation),
		eventIDs:     make(map[string]bool),
		linkIDs:      make(map[string]bool),
		pendencyIDs:  make(map[string]bool),
	}
	if s.window <= 0 {
		s.window = DefaultWindow
	}
	if s.workers <= 0 {
		s.workers = runtime.GOMAXPROCS(0)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

// dataset returns the collections built so far. Registries are sorted by id,
// the other collections are in construction order.
func (s *state) dataset() *cadobr.Dataset {
	return &cadobr.Dataset{
		Documents:          nilIfEmpty(s.documents),
		Parties:            sortedValues(s.parties),
		Properties:         sortedValues(s.properties),
		Operations:         sortedValues(s.operations),
		Obligations:        nilIfEmpty(s.obligations),
		PropertyEvents:     nilIfEmpty(s.events),
		Links:              nilIfEmpty(s.links),
		Pendencies:         nilIfEmpty(s.pendencies),
		NovationCandidates: nilIfEmpty(s.novations),
	}
}

func nilIfEmpty[T any](list []T) []T {
	if len(list) == 0 {
		return nil
	}
	return slices.Clone(list)
}

func sortedValues[T any](m map[string]*T) []*T {
	if len(m) == 0 {
		return nil
	}
	keys := slices.Sorted(maps.Keys(m))
	out := make([]*T, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

// pend records a pendency once.
func (s *state) pend(p *cadobr.Pendency) {
	if p.ID == "" {
		p.ID = pendencyID(p.EntityType, p.EntityID, p.Reason)
	}
	if s.pendencyIDs[p.ID] {
		return
	}
	s.pendencyIDs[p.ID] = true
	s.pendencies = append(s.pendencies, p)
}

// link records a link once.
func (s *state) link(l *cadobr.Link) {
	if s.linkIDs[l.ID] {
		return
	}
	s.linkIDs[l.ID] = true
	s.links = append(s.links, l)
}

// event records an event once.
func (s *state) event(e *cadobr.PropertyEvent) {
	if s.eventIDs[e.ID] {
		return
	}
	s.eventIDs[e.ID] = true
	s.events = append(s.events, e)
}

// insertSorted adds v to a sorted list of unique values.
func insertSorted[T cmp.Ordered](list []T, v T) []T {
	i, found := slices.BinarySearch(list, v)
	if found {
		return list
	}
	return slices.Insert(list, i, v)
}

// appendAnchor adds a to anchors unless it is already there.
func appendAnchor(anchors []cadobr.Anchor, a *cadobr.Anchor) []cadobr.Anchor {
	if a == nil || slices.Contains(anchors, *a) {
		return anchors
	}
	return append(anchors, *a)
}
