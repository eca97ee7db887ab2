package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/etnz/cadobr"
	"github.com/etnz/cadobr/identity"
)

// defaultDebtType is the debt type of a lien that does not state one.
const defaultDebtType = "DIVIDA"

// valuedLiens indexes the liens of valued deeds by property key, then by
// normalized registry reference.
type valuedLiens map[string]map[string]*cadobr.Lien

// loadValued reads the monetary tree. Unreadable files become pendencies.
func (s *state) loadValued(ctx context.Context) (valuedLiens, error) {
	files, err := cadobr.FindFiles(s.monetary, s.pattern)
	if err != nil {
		return nil, err
	}
	loaded, err := loadAll(ctx, files, s.workers)
	if err != nil {
		return nil, err
	}
	valued := make(valuedLiens)
	for _, l := range loaded {
		if l.Err != nil {
			s.unreadable(StageMonetary, l)
			continue
		}
		deed, ok := l.Doc.(*cadobr.PropertyDeed)
		if !ok {
			continue
		}
		pid := identity.Property(string(deed.Matricula))
		if pid == "" {
			continue
		}
		byRef := make(map[string]*cadobr.Lien)
		for _, lien := range deed.Liens {
			if lien == nil {
				continue
			}
			if ref := identity.RegistryRef(string(lien.Ref)); ref != "" {
				byRef[ref] = lien
			}
		}
		valued[pid] = byRef
	}
	return valued, nil
}

// buildObligations is layer B: one obligation per lien of every property deed,
// completed with the valuation of the same lien in the monetary tree.
func (s *state) buildObligations(ctx context.Context) error {
	valued, err := s.loadValued(ctx)
	if err != nil {
		return err
	}
	for _, src := range s.sources {
		deed, ok := src.Doc.(*cadobr.PropertyDeed)
		if !ok {
			continue
		}
		pid := identity.Property(string(deed.Matricula))
		if pid == "" {
			continue // recorded by layer A
		}
		for i, lien := range deed.Liens {
			if lien == nil {
				continue
			}
			s.buildObligation(src, deed, pid, i, lien, valued[pid])
		}
	}
	var active int
	for _, o := range s.obligations {
		if o.Status == cadobr.Active {
			active++
		}
	}
	s.log.Info("obligations built", "obligations", len(s.obligations), "active", active)
	return nil
}

func (s *state) buildObligation(src *source, deed *cadobr.PropertyDeed, pid string, i int, l *cadobr.Lien, valued map[string]*cadobr.Lien) {
	evidence := &cadobr.Anchor{Path: src.Rel}
	ref := identity.RegistryRef(string(l.Ref))
	if ref == "" {
		s.pend(&cadobr.Pendency{
			EntityType: cadobr.EntityProperty,
			EntityID:   pid,
			Reason:     ReasonNoRegistryRef,
			Detail:     fmt.Sprintf("hipotecas_onus[%d] of %s", i, src.Rel),
			DocumentID: src.record.ID,
			Evidence:   evidence,
		})
		return
	}
	id := identity.Obligation(pid, ref)
	if _, dup := s.obligationBy[id]; dup {
		s.pend(&cadobr.Pendency{
			EntityType: cadobr.EntityObligation,
			EntityID:   id,
			Reason:     ReasonDuplicateObligation,
			Detail:     src.Rel,
			DocumentID: src.record.ID,
			Evidence:   evidence,
		})
		return
	}

	o := &cadobr.Obligation{
		ID:          id,
		PropertyID:  pid,
		Ref:         ref,
		DebtType:    strings.TrimSpace(l.DebtType),
		OperationID: identity.Operation(string(l.ContractNumber)),
		CreditorID:  partyID(l.Creditor),
		DebtorID:    partyID(l.Debtor),
		Effective:   parseDate(l.Effective),
		Registered:  parseDate(l.Registered),
		Maturity:    parseDate(l.Maturity),
		Discharged:  parseDate(l.Discharged),
		DocumentID:  src.record.ID,
		Evidence:    evidence,
	}
	if o.DebtType == "" {
		o.DebtType = defaultDebtType
	}
	if o.DebtorID == "" {
		o.DebtorID = partyID(deed.Debtor)
	}

	o.Status = cadobr.Active
	if o.Discharged != nil || l.HasDischargeNote() || l.IsCancelled() {
		o.Status = cadobr.Discharged
	}

	start := o.Effective
	if start == nil {
		start = o.Registered
	}
	if start == nil {
		s.pend(&cadobr.Pendency{
			EntityType:    cadobr.EntityObligation,
			EntityID:      id,
			Reason:        ReasonNoWindow,
			MissingFields: []string{"data_efetiva", "data_registro"},
			DocumentID:    src.record.ID,
			Evidence:      evidence,
		})
		return
	}
	o.WindowStart = *start
	o.WindowEnd = o.Discharged
	if o.WindowEnd == nil {
		o.WindowEnd = o.Maturity
	}

	o.AmountCents = l.AmountCents
	if o.AmountCents == nil {
		o.AmountCents = firstAmount(l.Amount, l.OriginalAmount)
	}
	o.OriginalCents = firstAmount(l.OriginalAmount)

	if v := valued[ref]; v != nil {
		o.PresentCents = v.PresentCents
		if o.PresentCents == nil {
			o.PresentCents = firstAmount(v.PresentValue)
		}
		if o.PresentCents != nil {
			o.PresentValue = o.PresentCents.String()
		}
		o.Valuation = v.Valuation
	}

	s.obligations = append(s.obligations, o)
	s.obligationBy[id] = o
}

// firstAmount returns the first parseable amount of texts.
func firstAmount(texts ...string) *cadobr.Cents {
	for _, t := range texts {
		if c, _, ok := cadobr.ParseAmount(t); ok {
			return &c
		}
	}
	return nil
}
