package reconcile

import (
	"fmt"
	"strings"
)

// Stage is one layer of a reconciliation run. Layers always run in order,
// a run stops after the requested one.
type Stage int

const (
	StageA Stage = iota + 1 // index documents, parties, properties and operations
	StageB                  // obligations
	StageC                  // timeline
	StageD                  // links and pendencies
	StageE                  // novations
)

// All runs every layer.
const All = StageE

var stageNames = map[Stage]string{
	StageA: "A",
	StageB: "B",
	StageC: "C",
	StageD: "D",
	StageE: "E",
}

var stageTitles = map[Stage]string{
	StageA: "index",
	StageB: "obligations",
	StageC: "timeline",
	StageD: "links",
	StageE: "novations",
}

func (s Stage) String() string {
	if n, ok := stageNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Title returns what the layer builds.
func (s Stage) Title() string { return stageTitles[s] }

// ParseStage reads a stage name: A to E, or ALL.
func ParseStage(s string) (Stage, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "ALL" || name == "" {
		return All, nil
	}
	for st, n := range stageNames {
		if n == name {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q, want one of A, B, C, D, E or ALL", s)
}
