package cadobr

import "github.com/shopspring/decimal"

// Valuation reports whether the present value of a lien was computed, and why not otherwise.
//
// Member names follow the vocabulary of the documents it is attached to.
type Valuation struct {
	Computed    bool         `json:"calculado"`
	Motive      string       `json:"motivo"`
	Rule        string       `json:"regra_aplicada"`
	RateKind    string       `json:"tipo_taxa_detectado,omitempty"`
	UsesIndex   bool         `json:"usa_tr,omitempty"`
	IndexUsed   bool         `json:"tr_aplicada,omitempty"`
	IndexMotive string       `json:"tr_motivo,omitempty"`
	IndexGaps   []string     `json:"tr_meses_sem_dado,omitempty"`
	Details     *Calculation `json:"detalhes_calculo,omitempty"`
}

// Calculation details a computed present value.
type Calculation struct {
	From          string          `json:"data_inicial"`
	To            string          `json:"data_final"`
	Days          int             `json:"dias_decorridos"`
	Regime        string          `json:"regime_juros"`
	BaseCents     Cents           `json:"valor_base_centavos"`
	PresentCents  Cents           `json:"valor_presente_centavos"`
	RatePercent   decimal.Decimal `json:"taxa_percentual"`
	InterestRatio decimal.Decimal `json:"fator_juros"`
	IndexRatio    decimal.Decimal `json:"tr_fator_total"`
	IndexPeriod   *IndexPeriod    `json:"tr_periodo,omitempty"`
}

// IndexPeriod is the span of months the reference index was applied on.
type IndexPeriod struct {
	From   string `json:"inicio"`
	To     string `json:"fim"`
	Months int    `json:"total_meses"`
}
