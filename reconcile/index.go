package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/etnz/cadobr"
	"github.com/etnz/cadobr/date"
	"github.com/etnz/cadobr/identity"
	"github.com/etnz/cadobr/monetary"
	"golang.org/x/sync/errgroup"
)

// Party roles.
const (
	RoleCreditor      = "creditor"
	RoleDebtor        = "debtor"
	RoleGuarantor     = "guarantor"
	RoleSeller        = "seller"
	RoleBuyer         = "buyer"
	RoleOwner         = "owner"
	RolePartner       = "partner"
	RoleAdministrator = "administrator"
	RoleCompany       = "company"
)

// Pendency reasons.
const (
	ReasonUnreadable           = "unreadable_json"
	ReasonNoMatricula          = "property_deed_without_matricula"
	ReasonNoRegistryRef        = "lien_without_registry_reference"
	ReasonNoWindow             = "insufficient_data_for_window"
	ReasonDuplicateObligation  = "duplicate_registry_reference"
	ReasonSaleWithoutDate      = "sale_without_date"
	ReasonConsentWithoutDate   = "consent_without_parseable_date"
	ReasonPropertyWithoutDeed  = "property_without_deed"
	ReasonOperationNotIndexed  = "operation_not_indexed"
	ReasonDischargeWithoutDate = "discharge_without_date"
)

func pendencyID(entityType, entityID, reason string) string {
	return identity.Key("pend", entityType, entityID, reason)
}

// loadAll reads files in parallel. The result is in the order of files.
func loadAll(ctx context.Context, files []cadobr.File, workers int) ([]cadobr.Loaded, error) {
	loaded := make([]cadobr.Loaded, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			loaded[i] = cadobr.Load(f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return loaded, nil
}

// index is layer A. Documents are decoded in parallel, then merged into the
// registries by a single writer, in path order.
func (s *state) index(ctx context.Context) error {
	files, err := cadobr.FindFiles(s.normalized, s.pattern)
	if err != nil {
		return err
	}
	loaded, err := loadAll(ctx, files, s.workers)
	if err != nil {
		return err
	}
	for _, l := range loaded {
		if l.Err != nil {
			s.unreadable(StageNormalized, l)
			continue
		}
		s.indexDocument(l)
	}
	s.log.Info("documents indexed", "files", len(files), "documents", len(s.documents),
		"parties", len(s.parties), "properties", len(s.properties), "operations", len(s.operations))
	return s.checkIdentities()
}

// unreadable records a file that could not be read as a document.
func (s *state) unreadable(stage string, l cadobr.Loaded) {
	s.log.Warn("unreadable document", "stage", stage, "path", l.Rel, "error", l.Err)
	s.pend(&cadobr.Pendency{
		EntityType: cadobr.EntityDocument,
		EntityID:   stage + "/" + l.Rel,
		Reason:     ReasonUnreadable,
		Detail:     l.Err.Error(),
		Evidence:   &cadobr.Anchor{Path: l.Rel},
	})
}

func (s *state) indexDocument(l cadobr.Loaded) {
	head := l.Doc.Head()
	rec := &cadobr.DocumentRecord{
		ID:          identity.Document(StageNormalized, string(l.Doc.Type()), l.Rel),
		Type:        l.Doc.Type(),
		Stage:       StageNormalized,
		Path:        l.Rel,
		Folder:      l.Folder(),
		Tag:         head.Tag,
		Diagnostics: l.Diagnostics,
	}
	if k := head.KeyDates(); !k.IsZero() {
		rec.Dates = &k
	}
	rec.Anchors = appendAnchor(rec.Anchors, head.Source.Evidence())
	src := &source{Loaded: l, record: rec}

	switch doc := l.Doc.(type) {
	case *cadobr.PropertyDeed:
		s.indexDeed(src, doc)
	case *cadobr.MortgageDeed:
		s.indexInstrument(src, &doc.DebtInstrument)
	case *cadobr.BankContract:
		s.indexInstrument(src, &doc.DebtInstrument)
	case *cadobr.CorporateCharter:
		s.indexCharter(src, doc)
	}
	s.sources = append(s.sources, src)
	s.documents = append(s.documents, rec)
}

// partyID returns the key of a party as written in a document, or "".
func partyID(ref *cadobr.PartyRef) string {
	if ref == nil {
		return ""
	}
	cpf, cnpj := ref.TaxIDs()
	return identity.Party(cpf, cnpj, ref.DisplayName())
}

// registerParty adds ref to the party registry with role, and returns its key.
func (s *state) registerParty(src *source, ref *cadobr.PartyRef, role string, anchor *cadobr.Anchor) string {
	id := partyID(ref)
	if id == "" {
		return ""
	}
	p, ok := s.parties[id]
	if !ok {
		p = &cadobr.Party{ID: id}
		s.parties[id] = p
	}
	if p.Name == "" {
		if name := ref.DisplayName(); name != "" {
			p.Name = name
			p.NormalizedName = identity.PrimaryName(name)
		}
	}
	cpf, cnpj := ref.TaxIDs()
	if d := identity.Digits(cpf); len(d) == 11 && p.CPF == "" {
		p.CPF = d
	}
	if d := identity.Digits(cnpj); len(d) == 14 && p.CNPJ == "" && p.CPF == "" {
		p.CNPJ = d
	}
	p.Roles = insertSorted(p.Roles, role)
	p.DocumentIDs = insertSorted(p.DocumentIDs, src.record.ID)
	p.Anchors = appendAnchor(p.Anchors, ref.Source.Evidence())
	p.Anchors = appendAnchor(p.Anchors, anchor)

	src.record.PartyIDs = insertSorted(src.record.PartyIDs, id)
	return id
}

// registerProperty adds a property to the registry and returns its key.
// described is set when the document is the deed of the property.
func (s *state) registerProperty(src *source, matricula string, described bool) string {
	id := identity.Property(matricula)
	if id == "" {
		return ""
	}
	p, ok := s.properties[id]
	if !ok {
		p = &cadobr.Property{ID: id, Matricula: identity.Digits(matricula)}
		s.properties[id] = p
	}
	p.Described = p.Described || described
	p.DocumentIDs = insertSorted(p.DocumentIDs, src.record.ID)
	src.record.PropertyIDs = insertSorted(src.record.PropertyIDs, id)
	return id
}

func (s *state) indexDeed(src *source, d *cadobr.PropertyDeed) {
	if s.registerProperty(src, string(d.Matricula), true) == "" {
		s.pend(&cadobr.Pendency{
			EntityType: cadobr.EntityDocument,
			EntityID:   src.record.ID,
			Reason:     ReasonNoMatricula,
			DocumentID: src.record.ID,
			Evidence:   &cadobr.Anchor{Path: src.Rel},
		})
	}
	s.registerParty(src, d.Debtor, RoleDebtor, nil)
	for i := range d.Owners {
		s.registerParty(src, &d.Owners[i], RoleOwner, nil)
	}
	for _, l := range d.Liens {
		if l == nil {
			continue
		}
		s.registerParty(src, l.Creditor, RoleCreditor, nil)
		s.registerParty(src, l.Debtor, RoleDebtor, nil)
	}
	for _, sale := range d.Sales {
		if sale == nil {
			continue
		}
		for i := range sale.Sellers {
			s.registerParty(src, &sale.Sellers[i], RoleSeller, nil)
		}
		for i := range sale.Buyers {
			s.registerParty(src, &sale.Buyers[i], RoleBuyer, nil)
		}
	}
}

func (s *state) indexInstrument(src *source, d *cadobr.DebtInstrument) {
	creditor := s.registerParty(src, d.Creditor, RoleCreditor, nil)
	debtor := s.registerParty(src, d.Debtor, RoleDebtor, nil)
	guarantor := s.registerParty(src, d.Guarantor, RoleGuarantor, nil)

	var properties []string
	for _, g := range d.Guarantees {
		if id := s.registerProperty(src, string(g.Matricula), false); id != "" {
			properties = insertSorted(properties, id)
		}
	}

	for _, number := range d.OperationNumbers() {
		id := identity.Operation(number)
		if id == "" {
			continue
		}
		op, ok := s.operations[id]
		if !ok {
			op = &cadobr.Operation{ID: id, Number: identity.Digits(number)}
			s.operations[id] = op
		}
		op.DocumentIDs = insertSorted(op.DocumentIDs, src.record.ID)
		for _, p := range properties {
			op.PropertyIDs = insertSorted(op.PropertyIDs, p)
		}
		setIfEmpty(&op.CreditorID, creditor)
		setIfEmpty(&op.DebtorID, debtor)
		setIfEmpty(&op.GuarantorID, guarantor)
		s.describeOperation(op, d)
		src.record.OperationIDs = insertSorted(src.record.OperationIDs, id)
	}
}

// describeOperation completes an operation with the confessed debt of an instrument.
func (s *state) describeOperation(op *cadobr.Operation, d *cadobr.DebtInstrument) {
	if debt := d.Debt; debt != nil {
		if o := debt.Operation; o != nil {
			setIfEmpty(&op.Kind, o.Kind)
			if op.Signed == nil {
				op.Signed = parseDate(o.Signed)
			}
			if op.Maturity == nil {
				op.Maturity = parseDate(o.Maturity)
			}
		}
		op.UsesIndex = op.UsesIndex || monetary.UsesIndex(debt.Charges)
		if op.PositionDate == nil {
			op.PositionDate = parseDate(debt.PositionDate)
		}
		if op.Value == nil {
			for _, v := range []string{debt.Value, debt.OriginalPrincipal} {
				if c, _, ok := cadobr.ParseAmount(v); ok {
					op.Value = &c
					break
				}
			}
		}
	}
	setIfEmpty(&op.Kind, d.Tag)
}

func (s *state) indexCharter(src *source, c *cadobr.CorporateCharter) {
	s.registerParty(src, c.CompanyRef(), RoleCompany, nil)
	members := []struct {
		list []cadobr.Member
		role string
	}{
		{c.Partners, RolePartner},
		{c.PartnersTable, RolePartner},
		{c.Administrators, RoleAdministrator},
	}
	for _, m := range members {
		for i := range m.list {
			var anchor *cadobr.Anchor
			if a := m.list[i].Anchor(); a != "" {
				anchor = &cadobr.Anchor{Path: src.Rel, Anchor: a}
			}
			s.registerParty(src, &m.list[i].PartyRef, m.role, anchor)
		}
	}
}

// checkIdentities verifies that every registry key is the key its own fields
// compute to.
func (s *state) checkIdentities() error {
	var errs []error
	for _, p := range sortedValues(s.parties) {
		if got := identity.Party(p.CPF, p.CNPJ, p.Name); got != p.ID {
			errs = append(errs, fmt.Errorf("%w: party %s recomputes to %q", ErrInvariant, p.ID, got))
		}
	}
	for _, p := range sortedValues(s.properties) {
		if got := identity.Property(p.Matricula); got != p.ID {
			errs = append(errs, fmt.Errorf("%w: property %s recomputes to %q", ErrInvariant, p.ID, got))
		}
	}
	for _, op := range sortedValues(s.operations) {
		if got := identity.Operation(op.Number); got != op.ID {
			errs = append(errs, fmt.Errorf("%w: operation %s recomputes to %q", ErrInvariant, op.ID, got))
		}
	}
	return errors.Join(errs...)
}

func setIfEmpty(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func parseDate(s string) *date.Date {
	d, err := date.ParseText(s)
	if err != nil {
		return nil
	}
	return &d
}
