package reconcile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/cadobr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree writes files, keyed by slash separated relative path, under root.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
}

// run reconciles normalized and monetary trees up to stop.
func run(t *testing.T, normalized, valued map[string]string, stop Stage) *cadobr.Dataset {
	t.Helper()
	dir := t.TempDir()
	r := &Reconciler{
		Normalized: filepath.Join(dir, "normalized"),
		Monetary:   filepath.Join(dir, "monetary"),
		Workers:    2,
	}
	require.NoError(t, os.MkdirAll(r.Normalized, 0755))
	require.NoError(t, os.MkdirAll(r.Monetary, 0755))
	writeTree(t, r.Normalized, normalized)
	writeTree(t, r.Monetary, valued)
	ds, err := r.Run(context.Background(), stop)
	require.NoError(t, err)
	return ds
}

const mortgageJSON = `{
  "tipo_documento": "Escritura Pública de Hipoteca",
  "numero_documento": "176.700.530",
  "data_assinatura": "10 de fevereiro de 2.001",
  "credor": {"nome": "BANCO DO NORDESTE", "cnpj": "07.237.373/0001-20"},
  "emitente_devedor": {"nome": "ACME LTDA", "cnpj": "12.345.678/0001-90"},
  "interveniente_garante": {"nome": "Sr. José da Silva, casado", "cpf": "123.456.789-01"},
  "divida_confessada": {
    "operacao_original": {"numero": "176.700.530", "tipo": "FINAME", "data_celebracao": "10/02/2001"},
    "encargos_financeiros": "juros de 6% ao ano mais TR",
    "valor": "R$ 60.000,00"
  },
  "garantias": [{"matricula": "12.345"}, {"matricula": "999"}],
  "fonte_documento_geral": {"arquivo_md": "hipoteca.md", "ancora": "p.1"}
}`

const charterJSON = `{
  "razao_social": "ACME LTDA",
  "cnpj": "12345678000190",
  "socios": [{"nome": "JOSE DA SILVA", "cpf": "12345678901", "ancora_qualificacao": "cl. 1"}],
  "administradores": ["MARIA SOUZA"]
}`

const deedJSON = `{
  "matricula": "12.345",
  "hipotecas_onus": [
    {"registro_ou_averbacao": "R.1", "tipo_divida": "HIPOTECA", "numero_contrato": "176700530",
     "credor": {"nome": "BANCO DO NORDESTE", "cnpj": "07237373000120"},
     "data_efetiva": "2001-02-10", "data_registro": "2001-03-01", "data_baixa": "2005-01-01",
     "valor_divida_num": 6000000, "taxas": "6% ao ano"}
  ]
}`

func TestParseStage(t *testing.T) {
	for name, want := range map[string]Stage{"A": StageA, "c": StageC, " E ": StageE, "ALL": All, "all": All} {
		got, err := ParseStage(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseStage("F")
	assert.Error(t, err)
	assert.Equal(t, "B", StageB.String())
}

func TestRunMissingInput(t *testing.T) {
	dir := t.TempDir()
	r := &Reconciler{Normalized: dir, Monetary: filepath.Join(dir, "nope")}
	_, err := r.Run(context.Background(), All)
	assert.ErrorIs(t, err, ErrMissingInput)

	r = &Reconciler{Normalized: "", Monetary: dir}
	_, err = r.Run(context.Background(), All)
	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestIndex(t *testing.T) {
	ds := run(t, map[string]string{
		"escritura_hipotecaria/hipoteca.json": mortgageJSON,
		"contrato_social/acme.json":           charterJSON,
		"escritura_imovel/12345.json":         deedJSON,
		"escritura_imovel/broken.json":        `{"matricula": `,
	}, nil, StageA)

	require.Len(t, ds.Documents, 3)
	assert.Equal(t, "contrato_social/acme.json", ds.Documents[0].Path, "documents are in path order")
	assert.Equal(t, cadobr.TypeMortgageDeed, ds.Documents[1].Type)
	assert.Equal(t, []string{"op:176700530"}, ds.Documents[1].OperationIDs)
	assert.Equal(t, []string{"matricula:12345", "matricula:999"}, ds.Documents[1].PropertyIDs)
	require.NotNil(t, ds.Documents[1].Dates)
	assert.Equal(t, []cadobr.Anchor{{Path: "hipoteca.md", Anchor: "p.1"}}, ds.Documents[1].Anchors)

	parties := make(map[string]*cadobr.Party)
	for _, p := range ds.Parties {
		parties[p.ID] = p
	}
	jose := parties["cpf:12345678901"]
	require.NotNil(t, jose, "guarantor and partner share their cpf")
	assert.Equal(t, []string{RoleGuarantor, RolePartner}, jose.Roles)
	assert.Len(t, jose.DocumentIDs, 2)
	assert.Contains(t, jose.Anchors, cadobr.Anchor{Path: "contrato_social/acme.json", Anchor: "cl. 1"})

	acme := parties["cnpj:12345678000190"]
	require.NotNil(t, acme)
	assert.Equal(t, []string{RoleCompany, RoleDebtor}, acme.Roles)

	bank := parties["cnpj:07237373000120"]
	require.NotNil(t, bank)
	assert.Equal(t, []string{RoleCreditor}, bank.Roles)
	assert.Len(t, bank.DocumentIDs, 2)

	var named int
	for _, p := range ds.Parties {
		if p.CPF == "" && p.CNPJ == "" {
			named++
			assert.Equal(t, "MARIA SOUZA", p.NormalizedName)
		}
	}
	assert.Equal(t, 1, named)

	require.Len(t, ds.Properties, 2)
	assert.True(t, ds.Properties[0].Described)
	assert.False(t, ds.Properties[1].Described)

	require.Len(t, ds.Operations, 1)
	op := ds.Operations[0]
	assert.Equal(t, "op:176700530", op.ID)
	assert.Equal(t, "FINAME", op.Kind)
	assert.True(t, op.UsesIndex)
	require.NotNil(t, op.Signed)
	assert.Equal(t, "2001-02-10", op.Signed.String())
	require.NotNil(t, op.Value)
	assert.Equal(t, cadobr.Cents(6000000), *op.Value)
	assert.Equal(t, "cnpj:07237373000120", op.CreditorID)
	assert.Equal(t, "cpf:12345678901", op.GuarantorID)

	require.Len(t, ds.Pendencies, 1)
	assert.Equal(t, ReasonUnreadable, ds.Pendencies[0].Reason)
	assert.Equal(t, "normalized/escritura_imovel/broken.json", ds.Pendencies[0].EntityID)

	assert.Nil(t, ds.Obligations, "layer B did not run")
}

func TestRunIsDeterministic(t *testing.T) {
	files := map[string]string{
		"escritura_hipotecaria/hipoteca.json": mortgageJSON,
		"contrato_social/acme.json":           charterJSON,
		"escritura_imovel/12345.json":         deedJSON,
	}
	first := run(t, files, files, All)
	second := run(t, files, files, All)
	assert.Equal(t, first, second)
}

func TestCheckpoints(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, filepath.Join(dir, "n"), map[string]string{"escritura_imovel/12345.json": deedJSON})
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "m"), 0755))

	var stages []Stage
	r := &Reconciler{
		Normalized: filepath.Join(dir, "n"),
		Monetary:   filepath.Join(dir, "m"),
		Checkpoint: func(s Stage, ds *cadobr.Dataset) error {
			stages = append(stages, s)
			return nil
		},
	}
	_, err := r.Run(context.Background(), StageC)
	require.NoError(t, err)
	assert.Equal(t, []Stage{StageA, StageB, StageC}, stages)
}

func TestLinks(t *testing.T) {
	ds := run(t, map[string]string{
		"escritura_hipotecaria/hipoteca.json": mortgageJSON,
		"escritura_imovel/12345.json": `{"matricula": "12345", "hipotecas_onus": [
			{"registro_ou_averbacao": "R.1", "numero_contrato": "176.700.530", "data_efetiva": "2001-02-10"},
			{"registro_ou_averbacao": "R.2", "numero_contrato": "42", "data_efetiva": "2002-02-10"}]}`,
	}, nil, StageD)

	types := make(map[string]int)
	for _, l := range ds.Links {
		types[l.Type]++
	}
	assert.Equal(t, 2, types[LinkOperationProperty])
	assert.Equal(t, 3, types[LinkOperationParty])
	assert.Equal(t, 1, types[LinkObligationOperation])

	reasons := make(map[string]string)
	for _, p := range ds.Pendencies {
		reasons[p.Reason] = p.EntityID
	}
	assert.Equal(t, "matricula:999", reasons[ReasonPropertyWithoutDeed])
	assert.Equal(t, "matricula:12345#R.2", reasons[ReasonOperationNotIndexed])
}
