package cadobr

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// shape probes, evaluated on the generic JSON value of a document.
const (
	pathTag             = "$.tipo_documento"
	pathLiens           = "$.hipotecas_onus"
	pathMatricula       = "$.matricula"
	pathDebt            = "$.divida_confessada"
	pathGuarantees      = "$.garantias"
	pathOperationNumber = "$.divida_confessada.operacao_original.numero"
	pathCompany         = "$.razao_social"
	pathCompanyAlt      = "$.empresa"
	pathPartnersTable   = "$.quadro_socios"
	pathPartners        = "$.socios"
)

// has reports whether path resolves to a non null value in v.
func has(v any, path string) bool {
	got, err := jsonpath.Get(path, v)
	return err == nil && got != nil
}

// Detect returns the shape of a document given its generic JSON value and
// the name of the folder it was found in.
//
// An explicit type tag wins, then characteristic members, then the folder name.
func Detect(v any, folder string) (DocType, []Diagnostic) {
	if tag, err := jsonpath.Get(pathTag, v); err == nil {
		if s, ok := tag.(string); ok {
			if t, diags := detectTag(s); t != "" {
				return t, diags
			}
		}
	}

	fromFields := func(t DocType) (DocType, []Diagnostic) {
		return t, []Diagnostic{{Code: "detected_by_fields"}}
	}
	switch {
	case has(v, pathLiens) && has(v, pathMatricula):
		return fromFields(TypePropertyDeed)
	case has(v, pathDebt) && has(v, pathGuarantees):
		// mortgage folders also hold bank contracts, told apart by their operation number
		if strings.Contains(strings.ToLower(folder), "hipotec") && has(v, pathOperationNumber) {
			return fromFields(TypeBankContract)
		}
		return fromFields(TypeMortgageDeed)
	case has(v, pathCompany) || has(v, pathCompanyAlt) || has(v, pathPartnersTable) || has(v, pathPartners):
		return fromFields(TypeCorporateCharter)
	}

	f := strings.ToLower(folder)
	fromFolder := func(t DocType) (DocType, []Diagnostic) {
		return t, []Diagnostic{{Code: "detected_by_folder", Message: folder}}
	}
	switch {
	case strings.Contains(f, "contrato_social"):
		return fromFolder(TypeCorporateCharter)
	case strings.Contains(f, "escritura_imovel"), strings.Contains(f, "matricula"):
		return fromFolder(TypePropertyDeed)
	case strings.Contains(f, "escritura_hipotecaria"):
		return fromFolder(TypeMortgageDeed)
	case strings.Contains(f, "contrato_bancario"), strings.Contains(f, "cedula"):
		return fromFolder(TypeBankContract)
	}
	return TypeOther, []Diagnostic{{Code: "unknown_shape", Message: folder}}
}

func detectTag(tag string) (DocType, []Diagnostic) {
	t := strings.ToUpper(tag)
	byTag := []Diagnostic{{Code: "detected_by_tag", Message: tag}}
	switch {
	case strings.Contains(t, "ADITIV"):
		return TypeBankContract, append(byTag, Diagnostic{Code: "amendment"})
	case strings.Contains(t, "SOCIAL"):
		return TypeCorporateCharter, byTag
	case strings.Contains(t, "ESCRITURA") && strings.Contains(t, "HIPOT"):
		return TypeMortgageDeed, byTag
	case strings.Contains(t, "CONTRAT"), strings.Contains(t, "CÉDULA"), strings.Contains(t, "CEDULA"),
		strings.Contains(t, "CRÉDITO"), strings.Contains(t, "CREDITO"):
		return TypeBankContract, byTag
	case strings.Contains(t, "MATRÍCULA"), strings.Contains(t, "MATRICULA"):
		return TypePropertyDeed, byTag
	}
	return "", nil
}

// Decode reads a document, detects its shape and returns the matching variant.
func Decode(raw []byte, folder string) (Document, []Diagnostic, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, nil, fmt.Errorf("could not read document: %w", err)
	}
	if _, ok := v.(map[string]any); !ok {
		return nil, nil, fmt.Errorf("document is not a JSON object")
	}
	t, diags := Detect(v, folder)

	var doc Document
	switch t {
	case TypePropertyDeed:
		doc = &PropertyDeed{}
	case TypeMortgageDeed:
		doc = &MortgageDeed{}
	case TypeBankContract:
		doc = &BankContract{}
	case TypeCorporateCharter:
		doc = &CorporateCharter{}
	default:
		doc = &OtherDocument{}
	}
	if err := json.Unmarshal(raw, doc); err != nil {
		// keep the document in the catalog even if its members do not fit the shape
		diags = append(diags, Diagnostic{Code: "shape_mismatch", Message: err.Error()})
		other := &OtherDocument{}
		_ = json.Unmarshal(raw, other)
		return other, diags, nil
	}
	return doc, diags, nil
}
