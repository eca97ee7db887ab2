package reconcile

import (
	"testing"

	"github.com/etnz/cadobr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func novations(t *testing.T, deeds ...string) []*cadobr.NovationCandidate {
	t.Helper()
	files := make(map[string]string)
	for i, d := range deeds {
		files["escritura_imovel/"+string(rune('a'+i))+".json"] = d
	}
	return run(t, files, nil, All).NovationCandidates
}

func TestNovationSameOperation(t *testing.T) {
	got := novations(t, `{"matricula": "1", "hipotecas_onus": [
		{"registro_ou_averbacao": "R.1", "numero_contrato": "123", "data_efetiva": "2015-01-01", "data_baixa": "2020-01-01"},
		{"registro_ou_averbacao": "R.2", "numero_contrato": "123", "data_registro": "2020-04-01", "data_efetiva": "2020-04-01"}]}`)

	require.Len(t, got, 1)
	n := got[0]
	assert.Equal(t, "matricula:1#R.1", n.OldObligationID)
	assert.Equal(t, "matricula:1#R.2", n.NewObligationID)
	assert.Equal(t, cadobr.TierA, n.Tier)
	assert.Equal(t, 91, n.WindowDays, "2020 is a leap year")
	assert.Equal(t, []string{cadobr.BasisOperation, cadobr.BasisTimeWindow}, n.Basis)
	assert.Equal(t, 1, n.Rank)
	assert.Equal(t, "2020-01-01", n.DischargeDate.String())
	assert.Equal(t, "2020-04-01", n.RegistrationDate.String())
}

func TestNovationOutsideWindow(t *testing.T) {
	got := novations(t, `{"matricula": "1", "hipotecas_onus": [
		{"registro_ou_averbacao": "R.1", "numero_contrato": "123", "data_efetiva": "2015-01-01", "data_baixa": "2020-01-01"},
		{"registro_ou_averbacao": "R.2", "numero_contrato": "123", "data_efetiva": "2020-07-19"}]}`)
	assert.Empty(t, got)
}

func TestNovationExcludedDebtType(t *testing.T) {
	got := novations(t, `{"matricula": "1", "hipotecas_onus": [
		{"registro_ou_averbacao": "R.1", "tipo_divida": "Penhora", "data_efetiva": "2015-01-01", "data_baixa": "2020-01-01"},
		{"registro_ou_averbacao": "R.2", "tipo_divida": "HIPOTECA", "data_efetiva": "2020-02-01"}]}`)
	assert.Empty(t, got)
}

func TestNovationInterveningDischarge(t *testing.T) {
	got := novations(t, `{"matricula": "1", "hipotecas_onus": [
		{"registro_ou_averbacao": "R.1", "numero_contrato": "123", "data_efetiva": "2015-01-01", "data_baixa": "2020-01-01"},
		{"registro_ou_averbacao": "R.3", "numero_contrato": "123", "data_efetiva": "2019-06-01", "data_baixa": "2020-02-01"},
		{"registro_ou_averbacao": "R.2", "numero_contrato": "123", "data_efetiva": "2020-04-01"}]}`)

	require.Len(t, got, 1, "R.1 to R.2 is skipped, R.3 was discharged in between")
	assert.Equal(t, "matricula:1#R.3", got[0].OldObligationID)
	assert.Equal(t, "matricula:1#R.2", got[0].NewObligationID)
	assert.Equal(t, 60, got[0].WindowDays)
}

func TestNovationRanking(t *testing.T) {
	got := novations(t,
		`{"matricula": "1", "hipotecas_onus": [
			{"registro_ou_averbacao": "R.1", "numero_contrato": "123", "data_efetiva": "2015-01-01", "data_baixa": "2020-01-01"},
			{"registro_ou_averbacao": "R.2", "numero_contrato": "123", "data_efetiva": "2020-04-01"}]}`,
		`{"matricula": "2", "hipotecas_onus": [
			{"registro_ou_averbacao": "R.1", "credor": {"nome": "BANCO X", "cnpj": "07237373000120"},
			 "data_efetiva": "2015-01-01", "data_baixa": "2020-01-01"},
			{"registro_ou_averbacao": "R.2", "credor": {"nome": "BANCO X", "cnpj": "07237373000120"},
			 "data_efetiva": "2020-01-11"},
			{"registro_ou_averbacao": "R.3", "data_efetiva": "2020-01-05"}]}`)

	require.Len(t, got, 3)
	assert.Equal(t, cadobr.TierA, got[0].Tier)
	assert.Equal(t, "matricula:1", got[0].PropertyID)

	assert.Equal(t, cadobr.TierB, got[1].Tier)
	assert.Equal(t, []string{cadobr.BasisCreditor, cadobr.BasisTimeWindow}, got[1].Basis)
	assert.Equal(t, 10, got[1].WindowDays)

	assert.Equal(t, cadobr.TierC, got[2].Tier)
	assert.Equal(t, []string{cadobr.BasisTimeWindow}, got[2].Basis)
	assert.Equal(t, 4, got[2].WindowDays)

	for i, n := range got {
		assert.Equal(t, i+1, n.Rank)
	}
}
