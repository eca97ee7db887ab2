package reconcile

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/etnz/cadobr"
	"github.com/etnz/cadobr/identity"
)

// nonNovating lists debt types whose discharge does not mean the debt was
// replaced: leasing, fiduciary transfer and judicial restrictions.
var nonNovating = []string{
	"ARRENDAMENTO",
	"LEASING",
	"ALIENACAO FIDUCIARIA",
	"PENHORA",
	"BLOQUEIO",
	"INDISPONIBILIDADE",
	"ARRESTO",
	"SEQUESTRO",
}

// novating reports whether an obligation may take part in a novation.
func novating(o *cadobr.Obligation) bool {
	kind := identity.StripAccents(strings.ToUpper(o.DebtType))
	for _, ex := range nonNovating {
		if strings.Contains(kind, ex) {
			return false
		}
	}
	return true
}

// line is what a series of renewed debts have in common: the operation, else the creditor.
func line(o *cadobr.Obligation) string {
	if o.OperationID != "" {
		return o.OperationID
	}
	return o.CreditorID
}

var tierOrder = map[cadobr.Tier]int{cadobr.TierA: 0, cadobr.TierB: 1, cadobr.TierC: 2}

// detectNovations is layer E. On each property, a discharge followed within
// the window by the registration of another obligation is a candidate,
// unless another discharge of the same line comes in between.
func (s *state) detectNovations(context.Context) error {
	byProperty := make(map[string][]*cadobr.PropertyEvent)
	var properties []string
	for _, e := range s.events {
		if e.Kind != cadobr.LienRegistration && e.Kind != cadobr.LienDischarge {
			continue
		}
		if _, ok := byProperty[e.PropertyID]; !ok {
			properties = append(properties, e.PropertyID)
		}
		byProperty[e.PropertyID] = append(byProperty[e.PropertyID], e)
	}

	var found []*cadobr.NovationCandidate
	for _, pid := range properties {
		found = append(found, s.propertyNovations(pid, byProperty[pid])...)
	}

	slices.SortFunc(found, func(a, b *cadobr.NovationCandidate) int {
		if c := cmp.Compare(tierOrder[a.Tier], tierOrder[b.Tier]); c != 0 {
			return c
		}
		if c := cmp.Compare(a.WindowDays, b.WindowDays); c != 0 {
			return c
		}
		if c := cmp.Compare(a.OldObligationID, b.OldObligationID); c != 0 {
			return c
		}
		return cmp.Compare(a.NewObligationID, b.NewObligationID)
	})
	for i, n := range found {
		n.Rank = i + 1
	}
	s.novations = found
	s.log.Info("novations detected", "candidates", len(found), "window_days", s.window)
	return nil
}

// propertyNovations pairs the discharges and registrations of one property.
// events are in timeline order.
func (s *state) propertyNovations(pid string, events []*cadobr.PropertyEvent) []*cadobr.NovationCandidate {
	var out []*cadobr.NovationCandidate
	for _, d := range events {
		if d.Kind != cadobr.LienDischarge {
			continue
		}
		old := s.obligationBy[d.ObligationID]
		if old == nil || !novating(old) {
			continue
		}
		for _, n := range events {
			if n.Kind != cadobr.LienRegistration || n.ObligationID == old.ID {
				continue
			}
			days := n.Date.DaysSince(d.Date)
			if days < 0 || days > s.window {
				continue
			}
			renewed := s.obligationBy[n.ObligationID]
			if renewed == nil || !novating(renewed) {
				continue
			}
			if s.dischargedBetween(events, old, d, n) {
				continue
			}
			out = append(out, candidate(pid, old, renewed, d, n, days))
		}
	}
	return out
}

// dischargedBetween reports whether another obligation of the same line as
// old was discharged after d and no later than n.
func (s *state) dischargedBetween(events []*cadobr.PropertyEvent, old *cadobr.Obligation, d, n *cadobr.PropertyEvent) bool {
	l := line(old)
	if l == "" {
		return false
	}
	for _, e := range events {
		if e.Kind != cadobr.LienDischarge || e.ObligationID == old.ID || e.ObligationID == n.ObligationID {
			continue
		}
		if !e.Date.After(d.Date) || e.Date.After(n.Date) {
			continue
		}
		if other := s.obligationBy[e.ObligationID]; other != nil && line(other) == l {
			return true
		}
	}
	return false
}

func candidate(pid string, old, renewed *cadobr.Obligation, d, n *cadobr.PropertyEvent, days int) *cadobr.NovationCandidate {
	tier := cadobr.TierC
	var basis []string
	if old.OperationID != "" && old.OperationID == renewed.OperationID {
		basis = append(basis, cadobr.BasisOperation)
		tier = cadobr.TierA
	}
	if old.CreditorID != "" && old.CreditorID == renewed.CreditorID {
		basis = append(basis, cadobr.BasisCreditor)
		if tier == cadobr.TierC {
			tier = cadobr.TierB
		}
	}
	if old.DebtorID != "" && old.DebtorID == renewed.DebtorID {
		basis = append(basis, cadobr.BasisDebtor)
		if tier == cadobr.TierC {
			tier = cadobr.TierB
		}
	}
	basis = append(basis, cadobr.BasisTimeWindow)
	return &cadobr.NovationCandidate{
		ID:               identity.Key("nov", old.ID, renewed.ID, strconv.Itoa(days)),
		PropertyID:       pid,
		OldObligationID:  old.ID,
		NewObligationID:  renewed.ID,
		DischargeDate:    d.Date,
		RegistrationDate: n.Date,
		WindowDays:       days,
		Tier:             tier,
		Basis:            basis,
	}
}
