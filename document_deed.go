package cadobr

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// PropertyDeed is the registry extract of one property (matrícula): its liens
// and its ownership transfers.
type PropertyDeed struct {
	Header
	Matricula Text       `json:"matricula,omitempty"`
	Liens     []*Lien    `json:"hipotecas_onus,omitempty"`
	Sales     []*Sale    `json:"transacoes_venda,omitempty"`
	Debtor    *PartyRef  `json:"emitente_devedor,omitempty"`
	Owners    []PartyRef `json:"proprietarios,omitempty"`

	extra extraFields
}

func (*PropertyDeed) Type() DocType { return TypePropertyDeed }

func (d *PropertyDeed) UnmarshalJSON(data []byte) error {
	type plain PropertyDeed
	var v plain
	extra, err := decodeOpen(data, &v)
	if err != nil {
		return err
	}
	*d = PropertyDeed(v)
	d.extra = extra
	return nil
}

func (d PropertyDeed) MarshalJSON() ([]byte, error) {
	type plain PropertyDeed
	return encodeOpen(plain(d), d.extra)
}

// Lien is one encumbrance (ônus) entry of a property deed.
//
// Present value members are written by the monetary stage.
type Lien struct {
	Ref            Text             `json:"registro_ou_averbacao,omitempty"`
	DebtType       string           `json:"tipo_divida,omitempty"`
	ContractNumber Text             `json:"numero_contrato,omitempty"`
	Creditor       *PartyRef        `json:"credor,omitempty"`
	Debtor         *PartyRef        `json:"emitente_devedor,omitempty"`
	Effective      string           `json:"data_efetiva,omitempty"`
	Registered     string           `json:"data_registro,omitempty"`
	Maturity       string           `json:"vencimento,omitempty"`
	Discharged     string           `json:"data_baixa,omitempty"`
	DischargeNote  json.RawMessage  `json:"averbacao_baixa,omitempty"`
	Settled        *bool            `json:"quitada,omitempty"`
	Cancelled      *bool            `json:"cancelada,omitempty"`
	OriginalAmount string           `json:"valor_divida_original,omitempty"`
	Amount         string           `json:"valor_divida,omitempty"`
	AmountCents    *Cents           `json:"valor_divida_num,omitempty"`
	LegacyAmount   *decimal.Decimal `json:"valor_divida_numero,omitempty"`
	Rates          string           `json:"taxas,omitempty"`
	PresentValue   string           `json:"valor_presente,omitempty"`
	PresentCents   *Cents           `json:"valor_presente_num,omitempty"`
	Valuation      *Valuation       `json:"_monetary_meta,omitempty"`

	extra extraFields
}

// HasDischargeNote reports whether the lien carries a discharge annotation.
func (l *Lien) HasDischargeNote() bool { return truthy(l.DischargeNote) }

// IsCancelled reports whether the lien is explicitly marked as cancelled.
func (l *Lien) IsCancelled() bool { return l.Cancelled != nil && *l.Cancelled }

// IsSettled reports whether the lien is explicitly marked as settled.
func (l *Lien) IsSettled() bool { return l.Settled != nil && *l.Settled }

func (l *Lien) UnmarshalJSON(data []byte) error {
	type plain Lien
	var v plain
	extra, err := decodeOpen(data, &v)
	if err != nil {
		return err
	}
	*l = Lien(v)
	l.extra = extra
	return nil
}

func (l Lien) MarshalJSON() ([]byte, error) {
	type plain Lien
	return encodeOpen(plain(l), l.extra)
}

// Sale is one ownership transfer recorded on a property deed.
type Sale struct {
	Ref        Text            `json:"registro,omitempty"`
	Kind       string          `json:"tipo_transacao,omitempty"`
	Effective  string          `json:"data_efetiva,omitempty"`
	Registered string          `json:"data_registro,omitempty"`
	Value      string          `json:"valor,omitempty"`
	ValueCents *Cents          `json:"valor_num,omitempty"`
	Sellers    []PartyRef      `json:"vendedores,omitempty"`
	Buyers     []PartyRef      `json:"compradores,omitempty"`
	Consent    json.RawMessage `json:"anuencia_credor,omitempty"`

	extra extraFields
}

// ConsentText returns the creditor consent reference when it is written as text.
func (s *Sale) ConsentText() string { return rawString(s.Consent) }

func (s *Sale) UnmarshalJSON(data []byte) error {
	type plain Sale
	var v plain
	extra, err := decodeOpen(data, &v)
	if err != nil {
		return err
	}
	*s = Sale(v)
	s.extra = extra
	return nil
}

func (s Sale) MarshalJSON() ([]byte, error) {
	type plain Sale
	return encodeOpen(plain(s), s.extra)
}
