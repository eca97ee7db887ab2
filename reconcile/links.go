package reconcile

import (
	"context"
	"fmt"
	"slices"

	"github.com/etnz/cadobr"
	"github.com/etnz/cadobr/identity"
)

// Link types.
const (
	LinkOperationProperty   = "OPERATION_PROPERTY"
	LinkOperationParty      = "OPERATION_PARTY"
	LinkObligationOperation = "OBLIGATION_OPERATION"
)

// buildLinks is layer D: operations to the properties they are guaranteed by
// and to their parties, liens to the operations they cite.
func (s *state) buildLinks(context.Context) error {
	for _, op := range sortedValues(s.operations) {
		evidence := s.documentAnchors(op.DocumentIDs)
		for _, pid := range op.PropertyIDs {
			s.link(&cadobr.Link{
				ID:            identity.Key("lnk", op.ID, pid),
				Type:          LinkOperationProperty,
				FromType:      cadobr.EntityOperation,
				FromID:        op.ID,
				ToType:        cadobr.EntityProperty,
				ToID:          pid,
				Tier:          cadobr.TierA,
				Justification: fmt.Sprintf("a guarantee of operation %s names matrícula %s", op.Number, s.properties[pid].Matricula),
				DocumentIDs:   op.DocumentIDs,
				Evidence:      evidence,
			})
			if p := s.properties[pid]; !p.Described {
				s.pend(&cadobr.Pendency{
					EntityType: cadobr.EntityProperty,
					EntityID:   pid,
					Reason:     ReasonPropertyWithoutDeed,
					Detail:     fmt.Sprintf("guarantee of operation %s", op.Number),
					DocumentID: op.DocumentIDs[0],
				})
			}
		}
		roles := []struct{ role, id string }{
			{RoleCreditor, op.CreditorID},
			{RoleDebtor, op.DebtorID},
			{RoleGuarantor, op.GuarantorID},
		}
		for _, r := range roles {
			if r.id == "" {
				continue
			}
			s.link(&cadobr.Link{
				ID:            identity.Key("lnk", op.ID, r.id, r.role),
				Type:          LinkOperationParty,
				FromType:      cadobr.EntityOperation,
				FromID:        op.ID,
				ToType:        cadobr.EntityParty,
				ToID:          r.id,
				Role:          r.role,
				Tier:          cadobr.TierB,
				Justification: fmt.Sprintf("party named %s of operation %s", r.role, op.Number),
				DocumentIDs:   op.DocumentIDs,
				Evidence:      evidence,
			})
		}
	}

	for _, o := range s.obligations {
		if o.OperationID == "" {
			continue
		}
		if _, ok := s.operations[o.OperationID]; !ok {
			s.pend(&cadobr.Pendency{
				EntityType: cadobr.EntityObligation,
				EntityID:   o.ID,
				Reason:     ReasonOperationNotIndexed,
				Detail:     o.OperationID,
				DocumentID: o.DocumentID,
				Evidence:   o.Evidence,
			})
			continue
		}
		var evidence []cadobr.Anchor
		evidence = appendAnchor(evidence, o.Evidence)
		s.link(&cadobr.Link{
			ID:            identity.Key("lnk", o.ID, o.OperationID),
			Type:          LinkObligationOperation,
			FromType:      cadobr.EntityObligation,
			FromID:        o.ID,
			ToType:        cadobr.EntityOperation,
			ToID:          o.OperationID,
			Tier:          cadobr.TierA,
			Justification: fmt.Sprintf("lien %s cites operation %s", o.Ref, o.OperationID),
			DocumentIDs:   []string{o.DocumentID},
			Evidence:      evidence,
		})
	}
	s.log.Info("links built", "links", len(s.links), "pendencies", len(s.pendencies))
	return nil
}

// documentAnchors returns the evidence of documents: their source anchor, else their path.
func (s *state) documentAnchors(ids []string) []cadobr.Anchor {
	var out []cadobr.Anchor
	for _, src := range s.sources {
		if _, found := slices.BinarySearch(ids, src.record.ID); !found {
			continue
		}
		if len(src.record.Anchors) == 0 {
			out = appendAnchor(out, &cadobr.Anchor{Path: src.Rel})
		}
		for i := range src.record.Anchors {
			out = appendAnchor(out, &src.record.Anchors[i])
		}
	}
	return out
}
