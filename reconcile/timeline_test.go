package reconcile

import (
	"testing"

	"github.com/etnz/cadobr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const salesJSON = `{
  "matricula": "55",
  "hipotecas_onus": [
    {"registro_ou_averbacao": "R.2", "data_efetiva": "2010-01-01", "data_registro": "2010-03-02", "data_baixa": "2012-05-05"},
    {"registro_ou_averbacao": "R.1", "data_efetiva": "2010-01-01"}
  ],
  "transacoes_venda": [
    {"registro": "R.3", "tipo_transacao": "COMPRA E VENDA", "data_registro": "2011-07-01", "valor": "R$ 100.000,00",
     "vendedores": [{"nome": "ANA", "cpf": "11122233344"}], "compradores": ["BRUNO LIMA"],
     "anuencia_credor": "anuência do credor datada de 20/06/2011"},
    {"registro": "R.4", "tipo_transacao": "DOACAO", "anuencia_credor": "anuência do credor sem data"}
  ]
}`

func TestTimeline(t *testing.T) {
	ds := run(t, map[string]string{"escritura_imovel/55.json": salesJSON}, nil, StageC)

	var kinds []cadobr.EventKind
	var dates []string
	for _, e := range ds.PropertyEvents {
		kinds = append(kinds, e.Kind)
		dates = append(dates, e.Date.String())
	}
	assert.Equal(t, []cadobr.EventKind{
		cadobr.LienRegistration,
		cadobr.LienRegistration,
		cadobr.CreditorConsent,
		cadobr.SaleEvent,
		cadobr.LienDischarge,
	}, kinds)
	assert.Equal(t, []string{"2010-01-01", "2010-03-02", "2011-06-20", "2011-07-01", "2012-05-05"}, dates)

	late := ds.PropertyEvents[1]
	assert.Equal(t, "R.2", late.Ref)
	assert.True(t, late.Late)
	assert.Equal(t, 60, late.LateDays)
	assert.False(t, ds.PropertyEvents[0].Late)

	sale := ds.PropertyEvents[3]
	require.NotNil(t, sale.ValueCents)
	assert.Equal(t, cadobr.Cents(10000000), *sale.ValueCents)
	assert.Len(t, sale.PartyIDs, 2)
	assert.Equal(t, "COMPRA E VENDA", sale.Description)

	consent := ds.PropertyEvents[2]
	require.NotNil(t, consent.Evidence)
	assert.Contains(t, consent.Evidence.Excerpt, "20/06/2011")

	reasons := make(map[string]string)
	for _, p := range ds.Pendencies {
		reasons[p.Reason] = p.EntityID
	}
	assert.Equal(t, "matricula:55|R.4", reasons[ReasonSaleWithoutDate])
	assert.Equal(t, "matricula:55|R.4", reasons[ReasonConsentWithoutDate])
}

func TestTimelineUnregisteredSales(t *testing.T) {
	const deed = `{
  "matricula": "56",
  "transacoes_venda": [
    {"tipo_transacao": "COMPRA E VENDA", "data_registro": "2011-07-01", "vendedores": ["ANA"], "compradores": ["BRUNO"],
     "anuencia_credor": "anuência do credor datada de 20/06/2011"},
    {"tipo_transacao": "COMPRA E VENDA", "data_registro": "2013-02-01", "vendedores": ["BRUNO"], "compradores": ["CARLA"],
     "anuencia_credor": "anuência do credor datada de 20/06/2011"},
    {"tipo_transacao": "COMPRA E VENDA"},
    {"tipo_transacao": "COMPRA E VENDA"}
  ]
}`
	ds := run(t, map[string]string{"escritura_imovel/56.json": deed}, nil, StageC)

	ids := make(map[string]bool)
	var sales, consents []string
	for _, e := range ds.PropertyEvents {
		ids[e.ID] = true
		switch e.Kind {
		case cadobr.SaleEvent:
			sales = append(sales, e.Date.String())
		case cadobr.CreditorConsent:
			consents = append(consents, e.Date.String())
		}
	}
	assert.Equal(t, []string{"2011-07-01", "2013-02-01"}, sales)
	assert.Equal(t, []string{"2011-06-20", "2011-06-20"}, consents, "consents given the same day to two sales")
	assert.Len(t, ids, len(ds.PropertyEvents))

	var undated []string
	for _, p := range ds.Pendencies {
		if p.Reason == ReasonSaleWithoutDate {
			undated = append(undated, p.EntityID)
		}
	}
	assert.ElementsMatch(t, []string{"matricula:56|#2", "matricula:56|#3"}, undated)
}

func TestTimelineDischargeWithoutDate(t *testing.T) {
	const deed = `{
  "matricula": "57",
  "hipotecas_onus": [
    {"registro_ou_averbacao": "R.1", "data_efetiva": "2010-01-01", "averbacao_baixa": "AV.3 cancelamento"},
    {"registro_ou_averbacao": "R.2", "data_efetiva": "2010-01-01", "averbacao_baixa": {}}
  ]
}`
	ds := run(t, map[string]string{"escritura_imovel/57.json": deed}, nil, StageC)

	for _, e := range ds.PropertyEvents {
		assert.NotEqual(t, cadobr.LienDischarge, e.Kind)
	}
	require.Len(t, ds.Obligations, 2)
	var discharged *cadobr.Obligation
	for _, o := range ds.Obligations {
		if o.Ref == "R.1" {
			discharged = o
		} else {
			assert.NotEqual(t, cadobr.Discharged, o.Status, "an empty annotation does not discharge")
		}
	}
	require.NotNil(t, discharged)
	assert.Equal(t, cadobr.Discharged, discharged.Status)

	var found []*cadobr.Pendency
	for _, p := range ds.Pendencies {
		if p.Reason == ReasonDischargeWithoutDate {
			found = append(found, p)
		}
	}
	require.Len(t, found, 1)
	assert.Equal(t, cadobr.EntityObligation, found[0].EntityType)
	assert.Equal(t, discharged.ID, found[0].EntityID)
	assert.Equal(t, []string{"data_baixa"}, found[0].MissingFields)
}
