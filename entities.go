package cadobr

import "github.com/etnz/cadobr/date"

// Anchor points to the evidence a record was built from.
type Anchor struct {
	Path    string `json:"path"`
	Anchor  string `json:"anchor,omitempty"`
	Excerpt string `json:"excerpt,omitempty"`
}

// DocumentRecord is the catalog entry of one source document.
type DocumentRecord struct {
	ID           string       `json:"id"`
	Type         DocType      `json:"type"`
	Stage        string       `json:"stage"`
	Path         string       `json:"path"`
	Folder       string       `json:"folder,omitempty"`
	Tag          string       `json:"tag,omitempty"`
	PartyIDs     []string     `json:"party_ids,omitempty"`
	PropertyIDs  []string     `json:"property_ids,omitempty"`
	OperationIDs []string     `json:"operation_ids,omitempty"`
	Dates        *KeyDates    `json:"dates,omitempty"`
	Anchors      []Anchor     `json:"anchors,omitempty"`
	Diagnostics  []Diagnostic `json:"diagnostics,omitempty"`
}

// Party is a natural or legal person.
type Party struct {
	ID             string   `json:"id"`
	Name           string   `json:"name,omitempty"`
	NormalizedName string   `json:"normalized_name,omitempty"`
	CPF            string   `json:"cpf,omitempty"`
	CNPJ           string   `json:"cnpj,omitempty"`
	Roles          []string `json:"roles,omitempty"`
	DocumentIDs    []string `json:"document_ids,omitempty"`
	Anchors        []Anchor `json:"anchors,omitempty"`
}

// Property is a real-estate unit identified by its registry number.
type Property struct {
	ID          string   `json:"id"`
	Matricula   string   `json:"matricula"`
	DocumentIDs []string `json:"document_ids,omitempty"`

	// Described is set when a property deed of the corpus describes the property.
	Described bool `json:"described,omitempty"`
}

// Operation is a credit operation referenced by mortgage deeds or bank contracts.
type Operation struct {
	ID           string     `json:"id"`
	Number       string     `json:"number"`
	Kind         string     `json:"kind,omitempty"`
	UsesIndex    bool       `json:"uses_tr,omitempty"`
	Signed       *date.Date `json:"signed,omitempty"`
	Maturity     *date.Date `json:"maturity,omitempty"`
	PositionDate *date.Date `json:"position_date,omitempty"`
	CreditorID   string     `json:"creditor_id,omitempty"`
	DebtorID     string     `json:"debtor_id,omitempty"`
	GuarantorID  string     `json:"guarantor_id,omitempty"`
	Value        *Cents     `json:"value_cents,omitempty"`
	PropertyIDs  []string   `json:"property_ids,omitempty"`
	DocumentIDs  []string   `json:"document_ids,omitempty"`
}

// Status of an obligation. There is no third state: a lien without an
// explicit discharge is active.
type Status string

const (
	Active     Status = "ATIVA"
	Discharged Status = "BAIXADA"
)

// Obligation is a lien registered on a property.
type Obligation struct {
	ID            string     `json:"id"`
	PropertyID    string     `json:"property_id"`
	Ref           string     `json:"ref"`
	DebtType      string     `json:"debt_type"`
	OperationID   string     `json:"operation_id,omitempty"`
	CreditorID    string     `json:"creditor_id,omitempty"`
	DebtorID      string     `json:"debtor_id,omitempty"`
	Effective     *date.Date `json:"effective,omitempty"`
	Registered    *date.Date `json:"registered,omitempty"`
	Maturity      *date.Date `json:"maturity,omitempty"`
	Discharged    *date.Date `json:"discharged,omitempty"`
	Status        Status     `json:"status"`
	WindowStart   date.Date  `json:"window_start"`
	WindowEnd     *date.Date `json:"window_end,omitempty"`
	OriginalCents *Cents     `json:"original_cents,omitempty"`
	AmountCents   *Cents     `json:"amount_cents,omitempty"`
	PresentValue  string     `json:"present_value,omitempty"`
	PresentCents  *Cents     `json:"present_cents,omitempty"`
	Valuation     *Valuation `json:"valuation,omitempty"`
	DocumentID    string     `json:"document_id"`
	Evidence      *Anchor    `json:"evidence,omitempty"`
}

// Window returns the validity window of the obligation.
func (o *Obligation) Window() date.Window {
	w := date.Window{Start: o.WindowStart}
	if o.WindowEnd != nil {
		w.End = *o.WindowEnd
	}
	return w
}

// EventKind is the kind of a property event.
type EventKind string

const (
	LienRegistration EventKind = "LIEN_REGISTRATION"
	LienDischarge    EventKind = "LIEN_DISCHARGE"
	SaleEvent        EventKind = "SALE"
	CreditorConsent  EventKind = "CREDITOR_CONSENT"
)

// PropertyEvent is a dated fact about a property.
type PropertyEvent struct {
	ID           string    `json:"id"`
	PropertyID   string    `json:"property_id"`
	Kind         EventKind `json:"kind"`
	Date         date.Date `json:"date"`
	Ref          string    `json:"ref,omitempty"`
	ObligationID string    `json:"obligation_id,omitempty"`

	// LateDays is the number of days a registration came after the effective date.
	LateDays    int      `json:"registered_after_effective_days,omitempty"`
	Late        bool     `json:"registered_after_effective,omitempty"`
	PartyIDs    []string `json:"party_ids,omitempty"`
	ValueCents  *Cents   `json:"value_cents,omitempty"`
	Description string   `json:"description,omitempty"`
	DocumentID  string   `json:"document_id"`
	Evidence    *Anchor  `json:"evidence,omitempty"`
}

// Entity types referenced by links and pendencies.
const (
	EntityDocument   = "DOCUMENT"
	EntityParty      = "PARTY"
	EntityProperty   = "PROPERTY"
	EntityOperation  = "OPERATION"
	EntityObligation = "OBLIGATION"
	EntitySale       = "SALE"
)

// Tier is the confidence of a match, A being the strongest.
type Tier string

const (
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
)

// Link is a typed edge between two entities.
type Link struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	FromType      string   `json:"from_type"`
	FromID        string   `json:"from_id"`
	ToType        string   `json:"to_type"`
	ToID          string   `json:"to_id"`
	Role          string   `json:"role,omitempty"`
	Tier          Tier     `json:"tier"`
	Justification string   `json:"justification"`
	DocumentIDs   []string `json:"document_ids,omitempty"`
	Evidence      []Anchor `json:"evidence,omitempty"`
}

// Pendency is a fact that could not be resolved. Pendencies are never dropped.
type Pendency struct {
	ID            string   `json:"id"`
	EntityType    string   `json:"entity_type"`
	EntityID      string   `json:"entity_id"`
	Reason        string   `json:"reason"`
	Detail        string   `json:"detail,omitempty"`
	MissingFields []string `json:"missing_fields,omitempty"`
	DocumentID    string   `json:"document_id,omitempty"`
	Evidence      *Anchor  `json:"evidence,omitempty"`
}

// Basis of a novation candidate.
const (
	BasisOperation  = "OPERATION"
	BasisCreditor   = "CREDITOR"
	BasisDebtor     = "DEBTOR"
	BasisTimeWindow = "TIME_WINDOW"
)

// NovationCandidate is the hypothesis that a discharged obligation was
// replaced by an obligation registered shortly after on the same property.
type NovationCandidate struct {
	ID               string    `json:"id"`
	PropertyID       string    `json:"property_id"`
	OldObligationID  string    `json:"old_obligation_id"`
	NewObligationID  string    `json:"new_obligation_id"`
	DischargeDate    date.Date `json:"discharge_date"`
	RegistrationDate date.Date `json:"registration_date"`
	WindowDays       int       `json:"window_days"`
	Tier             Tier      `json:"tier"`
	Basis            []string  `json:"basis"`
	Rank             int       `json:"rank"`
}

// Dataset holds the consolidated collections of a run.
type Dataset struct {
	Documents          []*DocumentRecord
	Parties            []*Party
	Properties         []*Property
	Operations         []*Operation
	Obligations        []*Obligation
	PropertyEvents     []*PropertyEvent
	Links              []*Link
	Pendencies         []*Pendency
	NovationCandidates []*NovationCandidate
}
