// Package renderer turns a reconciled dataset into markdown reports.
package renderer

import (
	"bytes"
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/etnz/cadobr"
	md "github.com/nao1215/markdown"
)

// Summary holds the figures of a dataset overview.
type Summary struct {
	Title        string
	Counts       []Count
	Active       int
	Discharged   int
	Valued       int
	PresentTotal cadobr.Cents
	Late         int
	Tiers        map[cadobr.Tier]int
	Pendencies   []Count
	Novations    []*cadobr.NovationCandidate
}

// Count is a labelled number.
type Count struct {
	Label string
	N     int
}

// maxNovations bounds the novation table of a summary.
const maxNovations = 20

// NewSummary computes the summary of ds.
func NewSummary(title string, ds *cadobr.Dataset) *Summary {
	s := &Summary{
		Title: title,
		Counts: []Count{
			{"documents", len(ds.Documents)},
			{"parties", len(ds.Parties)},
			{"properties", len(ds.Properties)},
			{"operations", len(ds.Operations)},
			{"obligations", len(ds.Obligations)},
			{"property events", len(ds.PropertyEvents)},
			{"links", len(ds.Links)},
			{"pendencies", len(ds.Pendencies)},
			{"novation candidates", len(ds.NovationCandidates)},
		},
		Tiers: make(map[cadobr.Tier]int),
	}
	for _, o := range ds.Obligations {
		switch o.Status {
		case cadobr.Active:
			s.Active++
			if o.PresentCents != nil {
				s.Valued++
				s.PresentTotal += *o.PresentCents
			}
		case cadobr.Discharged:
			s.Discharged++
		}
	}
	for _, e := range ds.PropertyEvents {
		if e.Late {
			s.Late++
		}
	}

	reasons := make(map[string]int)
	for _, p := range ds.Pendencies {
		reasons[p.Reason]++
	}
	for _, r := range slices.Sorted(maps.Keys(reasons)) {
		s.Pendencies = append(s.Pendencies, Count{r, reasons[r]})
	}
	slices.SortStableFunc(s.Pendencies, func(a, b Count) int { return cmp.Compare(b.N, a.N) })

	for _, n := range ds.NovationCandidates {
		s.Tiers[n.Tier]++
	}
	s.Novations = ds.NovationCandidates[:min(len(ds.NovationCandidates), maxNovations)]
	return s
}

// SummaryMarkdown renders s.
func SummaryMarkdown(s *Summary) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(s.Title)

	counts := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Collection", "Records"},
	}
	for _, c := range s.Counts {
		counts.Rows = append(counts.Rows, []string{c.Label, strconv.Itoa(c.N)})
	}
	doc.Table(counts)

	doc.H2("Obligations")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{md.Bold("Active"), md.Bold(strconv.Itoa(s.Active))},
		Rows: [][]string{
			{"Discharged", strconv.Itoa(s.Discharged)},
			{"Active with a present value", strconv.Itoa(s.Valued)},
			{"Present value of active liens (R$)", s.PresentTotal.String()},
			{"Registered after their effective date", strconv.Itoa(s.Late)},
		},
	})

	if len(s.Pendencies) > 0 {
		doc.H2("Pendencies")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
			Header:    []string{"Reason", "Count"},
		}
		for _, p := range s.Pendencies {
			table.Rows = append(table.Rows, []string{p.Label, strconv.Itoa(p.N)})
		}
		doc.Table(table)
	}

	if len(s.Novations) > 0 {
		doc.H2("Novation Candidates")
		doc.PlainText(fmt.Sprintf("Tier A: %d, tier B: %d, tier C: %d.",
			s.Tiers[cadobr.TierA], s.Tiers[cadobr.TierB], s.Tiers[cadobr.TierC]))
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignRight, md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight},
			Header:    []string{"Rank", "Tier", "Property", "Discharged", "Registered", "Days"},
		}
		for _, n := range s.Novations {
			table.Rows = append(table.Rows, []string{
				strconv.Itoa(n.Rank),
				string(n.Tier),
				n.PropertyID,
				fmt.Sprintf("%s %s", n.OldObligationID, n.DischargeDate),
				fmt.Sprintf("%s %s", n.NewObligationID, n.RegistrationDate),
				strconv.Itoa(n.WindowDays),
			})
		}
		doc.Table(table)
	}

	return doc.String()
}
