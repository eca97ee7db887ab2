package reconcile

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/etnz/cadobr"
	"github.com/etnz/cadobr/date"
	"github.com/etnz/cadobr/identity"
)

// maxExcerpt is the number of runes of a consent text kept as evidence.
const maxExcerpt = 200

// buildTimeline is layer C: lien registrations and discharges, sales and
// creditor consents, ordered per property by date, registry reference and id.
func (s *state) buildTimeline(context.Context) error {
	for _, o := range s.obligations {
		s.lienEvents(o)
	}
	for _, src := range s.sources {
		deed, ok := src.Doc.(*cadobr.PropertyDeed)
		if !ok {
			continue
		}
		pid := identity.Property(string(deed.Matricula))
		if pid == "" {
			continue
		}
		for i, sale := range deed.Sales {
			if sale != nil {
				s.saleEvents(src, pid, i, sale)
			}
		}
	}
	slices.SortStableFunc(s.events, compareEvents)
	s.log.Info("timeline built", "events", len(s.events))
	return nil
}

func compareEvents(a, b *cadobr.PropertyEvent) int {
	if c := cmp.Compare(a.PropertyID, b.PropertyID); c != 0 {
		return c
	}
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Ref, b.Ref); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func (s *state) lienEvents(o *cadobr.Obligation) {
	var parties []string
	for _, id := range []string{o.CreditorID, o.DebtorID} {
		if id != "" {
			parties = insertSorted(parties, id)
		}
	}

	on := o.WindowStart
	switch {
	case o.Registered != nil:
		on = *o.Registered
	case o.Effective != nil:
		on = *o.Effective
	}
	reg := &cadobr.PropertyEvent{
		ID:           identity.Key("evt", o.ID, string(cadobr.LienRegistration)),
		PropertyID:   o.PropertyID,
		Kind:         cadobr.LienRegistration,
		Date:         on,
		Ref:          o.Ref,
		ObligationID: o.ID,
		PartyIDs:     parties,
		ValueCents:   o.AmountCents,
		Description:  o.DebtType,
		DocumentID:   o.DocumentID,
		Evidence:     o.Evidence,
	}
	if o.Registered != nil && o.Effective != nil && o.Registered.After(*o.Effective) {
		reg.Late = true
		reg.LateDays = o.Registered.DaysSince(*o.Effective)
	}
	s.event(reg)

	if o.Status != cadobr.Discharged {
		return
	}
	if o.Discharged == nil {
		// discharged by annotation or cancellation, the timeline cannot place it
		s.pend(&cadobr.Pendency{
			EntityType:    cadobr.EntityObligation,
			EntityID:      o.ID,
			Reason:        ReasonDischargeWithoutDate,
			MissingFields: []string{"data_baixa"},
			DocumentID:    o.DocumentID,
			Evidence:      o.Evidence,
		})
		return
	}
	s.event(&cadobr.PropertyEvent{
		ID:           identity.Key("evt", o.ID, string(cadobr.LienDischarge)),
		PropertyID:   o.PropertyID,
		Kind:         cadobr.LienDischarge,
		Date:         *o.Discharged,
		Ref:          o.Ref,
		ObligationID: o.ID,
		PartyIDs:     parties,
		Description:  o.DebtType,
		DocumentID:   o.DocumentID,
		Evidence:     o.Evidence,
	})
}

func (s *state) saleEvents(src *source, pid string, i int, sale *cadobr.Sale) {
	on := parseDate(sale.Effective)
	if on == nil {
		on = parseDate(sale.Registered)
	}
	// unregistered sales are told apart by their date and position in the deed
	ref := identity.RegistryRef(string(sale.Ref))
	discriminator := ref
	if discriminator == "" {
		discriminator = "#" + strconv.Itoa(i)
		if on != nil {
			discriminator = on.String() + discriminator
		}
	}
	evidence := &cadobr.Anchor{Path: src.Rel}

	var parties []string
	for _, list := range [][]cadobr.PartyRef{sale.Sellers, sale.Buyers} {
		for j := range list {
			if id := partyID(&list[j]); id != "" {
				parties = insertSorted(parties, id)
			}
		}
	}

	if on != nil {
		value := sale.ValueCents
		if value == nil {
			value = firstAmount(sale.Value)
		}
		s.event(&cadobr.PropertyEvent{
			ID:          identity.Key("evt", pid, string(cadobr.SaleEvent), discriminator),
			PropertyID:  pid,
			Kind:        cadobr.SaleEvent,
			Date:        *on,
			Ref:         ref,
			PartyIDs:    parties,
			ValueCents:  value,
			Description: strings.TrimSpace(sale.Kind),
			DocumentID:  src.record.ID,
			Evidence:    evidence,
		})
	} else {
		s.pend(&cadobr.Pendency{
			EntityType:    cadobr.EntitySale,
			EntityID:      pid + "|" + discriminator,
			Reason:        ReasonSaleWithoutDate,
			MissingFields: []string{"data_efetiva", "data_registro"},
			DocumentID:    src.record.ID,
			Evidence:      evidence,
		})
	}

	consent := strings.TrimSpace(sale.ConsentText())
	if consent == "" {
		return
	}
	excerpt := cadobr.Truncate(consent, maxExcerpt)
	when, err := date.ParseText(consent)
	if err != nil {
		s.pend(&cadobr.Pendency{
			EntityType: cadobr.EntitySale,
			EntityID:   pid + "|" + discriminator,
			Reason:     ReasonConsentWithoutDate,
			Detail:     excerpt,
			DocumentID: src.record.ID,
			Evidence:   &cadobr.Anchor{Path: src.Rel, Excerpt: excerpt},
		})
		return
	}
	s.event(&cadobr.PropertyEvent{
		ID:          identity.Key("evt", pid, string(cadobr.CreditorConsent), discriminator, when.String()),
		PropertyID:  pid,
		Kind:        cadobr.CreditorConsent,
		Date:        when,
		Ref:         ref,
		Description: excerpt,
		DocumentID:  src.record.ID,
		Evidence:    &cadobr.Anchor{Path: src.Rel, Excerpt: excerpt},
	})
}
