package cadobr

import "encoding/json"

// CorporateCharter is a company's articles of association.
type CorporateCharter struct {
	Header
	Company        string   `json:"razao_social,omitempty"`
	CompanyAlt     string   `json:"empresa,omitempty"`
	CNPJ           string   `json:"cnpj,omitempty"`
	Partners       []Member `json:"socios,omitempty"`
	PartnersTable  []Member `json:"quadro_socios,omitempty"`
	Administrators []Member `json:"administradores,omitempty"`
}

func (*CorporateCharter) Type() DocType { return TypeCorporateCharter }

// CompanyRef returns the company itself as a party.
func (c *CorporateCharter) CompanyRef() *PartyRef {
	name := c.Company
	if name == "" {
		name = c.CompanyAlt
	}
	if name == "" && c.CNPJ == "" {
		return nil
	}
	return &PartyRef{CorporateName: name, CNPJ: c.CNPJ}
}

// Member is a partner or an administrator of a company.
type Member struct {
	PartyRef
	Qualification string `json:"ancora_qualificacao,omitempty"`
	Clause        string `json:"ancora_clausula,omitempty"`
}

func (m *Member) UnmarshalJSON(data []byte) error {
	if err := m.PartyRef.UnmarshalJSON(data); err != nil {
		return err
	}
	var anchors struct {
		Qualification string `json:"ancora_qualificacao"`
		Clause        string `json:"ancora_clausula"`
	}
	// a bare name has no anchors
	_ = json.Unmarshal(data, &anchors)
	m.Qualification, m.Clause = anchors.Qualification, anchors.Clause
	return nil
}

// Anchor returns the clause or qualification a member was read from.
func (m Member) Anchor() string {
	if m.Qualification != "" {
		return m.Qualification
	}
	return m.Clause
}

// OtherDocument is a document of unknown shape, kept for the catalog only.
type OtherDocument struct {
	Header
}

func (*OtherDocument) Type() DocType { return TypeOther }
