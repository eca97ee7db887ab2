package cadobr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/etnz/cadobr/date"
)

// DocType identifies the shape of an extracted document.
type DocType string

const (
	TypePropertyDeed     DocType = "PROPERTY_DEED"
	TypeMortgageDeed     DocType = "MORTGAGE_DEED"
	TypeBankContract     DocType = "BANK_CONTRACT"
	TypeCorporateCharter DocType = "CORPORATE_CHARTER"
	TypeOther            DocType = "OTHER"
)

// Document is one extracted source document.
//
// The concrete types are *PropertyDeed, *MortgageDeed, *BankContract,
// *CorporateCharter and *OtherDocument.
type Document interface {
	Type() DocType
	// Head returns the members common to every document shape.
	Head() *Header
}

// Header holds the members every extracted document may carry.
type Header struct {
	Tag        string  `json:"tipo_documento,omitempty"`
	Source     *Source `json:"fonte_documento_geral,omitempty"`
	Signed     string  `json:"data_assinatura,omitempty"`
	Registered string  `json:"data_registro,omitempty"`
	Effective  string  `json:"data_efetiva,omitempty"`
}

// Head returns h itself, so that embedding a Header implements part of Document.
func (h *Header) Head() *Header { return h }

// KeyDates returns the parseable dates of the document header.
func (h *Header) KeyDates() KeyDates {
	return KeyDates{
		Signed:     parseDate(h.Signed),
		Registered: parseDate(h.Registered),
		Effective:  parseDate(h.Effective),
	}
}

// KeyDates are the dates a document is usually identified by.
type KeyDates struct {
	Signed     *date.Date `json:"signed,omitempty"`
	Registered *date.Date `json:"registered,omitempty"`
	Effective  *date.Date `json:"effective,omitempty"`
}

// IsZero reports whether no date is known.
func (k KeyDates) IsZero() bool { return k.Signed == nil && k.Registered == nil && k.Effective == nil }

// Source points to the evidence a fact was extracted from.
type Source struct {
	File    string `json:"arquivo_md,omitempty"`
	Alt     string `json:"arquivo,omitempty"`
	Anchor  string `json:"ancora,omitempty"`
	Excerpt string `json:"trecho,omitempty"`
}

// maxExcerpt is the number of runes of source text kept as evidence.
const maxExcerpt = 500

// Evidence converts s into an Anchor, or nil if s does not name a file.
func (s *Source) Evidence() *Anchor {
	if s == nil {
		return nil
	}
	file := s.File
	if file == "" {
		file = s.Alt
	}
	if file == "" {
		return nil
	}
	return &Anchor{Path: file, Anchor: s.Anchor, Excerpt: Truncate(s.Excerpt, maxExcerpt)}
}

// Truncate returns the first n runes of s.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// PartyRef is a party as written in a document: either a bare name or an
// object with a name and tax ids.
type PartyRef struct {
	Name          string  `json:"nome,omitempty"`
	CorporateName string  `json:"razao_social,omitempty"`
	Denomination  string  `json:"denominacao,omitempty"`
	CPF           string  `json:"cpf,omitempty"`
	CNPJ          string  `json:"cnpj,omitempty"`
	TaxID         string  `json:"documento,omitempty"`
	Source        *Source `json:"fonte,omitempty"`

	raw json.RawMessage
}

// DisplayName returns the first available name.
func (p PartyRef) DisplayName() string {
	for _, n := range []string{p.Name, p.CorporateName, p.Denomination} {
		if n = strings.TrimSpace(n); n != "" {
			return n
		}
	}
	return ""
}

// TaxIDs returns the cpf and cnpj candidates of p. A generic "documento"
// member is offered as both; its digit count decides.
func (p PartyRef) TaxIDs() (cpf, cnpj string) {
	cpf, cnpj = p.CPF, p.CNPJ
	if cpf == "" {
		cpf = p.TaxID
	}
	if cnpj == "" {
		cnpj = p.TaxID
	}
	return cpf, cnpj
}

func (p *PartyRef) UnmarshalJSON(data []byte) error {
	p.raw = append(json.RawMessage(nil), data...)
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		return json.Unmarshal(trimmed, &p.Name)
	}
	type plain PartyRef
	var v plain
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	v.raw = p.raw
	*p = PartyRef(v)
	return nil
}

// MarshalJSON writes p back in the form it was read.
func (p PartyRef) MarshalJSON() ([]byte, error) {
	if len(p.raw) > 0 {
		return p.raw, nil
	}
	type plain PartyRef
	return json.Marshal(plain(p))
}

// Text is a string member that extractors sometimes emit as a number.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	default:
		if _, err := strconv.ParseFloat(string(data), 64); err != nil {
			return fmt.Errorf("cannot read %s as text", data)
		}
		*t = Text(data)
		return nil
	}
}

// Numbers is a list of identifiers written either as a single value or as a list.
type Numbers []Text

func (n *Numbers) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []Text
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*n = list
		return nil
	}
	var one Text
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	if one != "" {
		*n = Numbers{one}
	}
	return nil
}

// MarshalJSON keeps a single number as a scalar.
func (n Numbers) MarshalJSON() ([]byte, error) {
	if len(n) == 1 {
		return json.Marshal(n[0])
	}
	return json.Marshal([]Text(n))
}

// Diagnostic is a note produced while reading a document.
type Diagnostic struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

func parseDate(s string) *date.Date {
	d, err := date.ParseText(s)
	if err != nil {
		return nil
	}
	return &d
}

// truthy reports whether a raw member holds a meaningful value: not null,
// not false, not an empty string or container.
func truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	switch string(raw) {
	case "", "null", "false", `""`, "0":
		return false
	}
	if n := len(raw); n >= 2 && (raw[0] == '{' && raw[n-1] == '}' || raw[0] == '[' && raw[n-1] == ']') {
		return len(bytes.TrimSpace(raw[1:n-1])) > 0
	}
	return true
}

// rawString returns the string held by raw, or "" when raw is not a JSON string.
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
