package cadobr

// DebtInstrument holds the members shared by mortgage deeds and bank
// contracts: the parties, the confessed debt and the guarantees.
type DebtInstrument struct {
	Header
	Numbers        Numbers     `json:"numero_documento,omitempty"`
	ContractNumber Text        `json:"numero_contrato,omitempty"`
	OperationID    Text        `json:"operation_id,omitempty"`
	Creditor       *PartyRef   `json:"credor,omitempty"`
	Debtor         *PartyRef   `json:"emitente_devedor,omitempty"`
	Guarantor      *PartyRef   `json:"interveniente_garante,omitempty"`
	Debt           *Debt       `json:"divida_confessada,omitempty"`
	Guarantees     []Guarantee `json:"garantias,omitempty"`
}

// Debt is the confessed debt of an instrument.
type Debt struct {
	Operation         *OperationRef `json:"operacao_original,omitempty"`
	Charges           string        `json:"encargos_financeiros,omitempty"`
	PositionDate      string        `json:"data_posicao,omitempty"`
	Value             string        `json:"valor,omitempty"`
	OriginalPrincipal string        `json:"valor_principal_original,omitempty"`
}

// OperationRef is the credit operation a debt originates from.
type OperationRef struct {
	Number   Text   `json:"numero,omitempty"`
	Kind     string `json:"tipo,omitempty"`
	Signed   string `json:"data_celebracao,omitempty"`
	Maturity string `json:"vencimento,omitempty"`
}

// Guarantee is a property offered as collateral.
type Guarantee struct {
	Matricula Text    `json:"matricula,omitempty"`
	Kind      string  `json:"tipo,omitempty"`
	Source    *Source `json:"fonte,omitempty"`
}

// OperationNumbers returns the raw operation numbers an instrument refers to,
// in priority order: explicit numbers, then the original operation number.
func (d *DebtInstrument) OperationNumbers() []string {
	var out []string
	for _, n := range d.Numbers {
		out = append(out, string(n))
	}
	if len(out) > 0 {
		return out
	}
	for _, n := range []Text{d.ContractNumber, d.OperationID} {
		if n != "" {
			return []string{string(n)}
		}
	}
	if d.Debt != nil && d.Debt.Operation != nil && d.Debt.Operation.Number != "" {
		return []string{string(d.Debt.Operation.Number)}
	}
	return nil
}

// MortgageDeed is a public deed constituting a mortgage over one or more properties.
type MortgageDeed struct{ DebtInstrument }

func (*MortgageDeed) Type() DocType { return TypeMortgageDeed }

// BankContract is a bank credit instrument (cédula, contract or amendment).
type BankContract struct{ DebtInstrument }

func (*BankContract) Type() DocType { return TypeBankContract }
