package cadobr

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/etnz/cadobr/date"
	"github.com/etnz/cadobr/identity"
)

// Member names rewritten by Normalize, wherever they appear in a document.
var (
	dateKeys = map[string]bool{
		"data_assinatura": true, "data_registro": true, "data_efetiva": true,
		"data_baixa": true, "data_emissao": true, "data_posicao": true,
		"data_posicao_composicao": true, "data_celebracao": true, "data_valor": true,
		"vencimento": true, "vencimento_final": true, "primeiro_vencimento": true,
		"ultimo_vencimento": true, "data": true,
	}
	taxIDKeys  = map[string]bool{"cpf": true, "cnpj": true}
	numberKeys = map[string]bool{"numero": true, "numero_contrato": true, "numero_documento": true}
)

// NormalizeStats counts the members rewritten by Normalize.
type NormalizeStats struct {
	Dates   int `json:"dates"`
	TaxIDs  int `json:"tax_ids"`
	Numbers int `json:"numbers"`
	Liens   int `json:"liens"`
	Sales   int `json:"sales"`
}

// Add accumulates o into s.
func (s *NormalizeStats) Add(o NormalizeStats) {
	s.Dates += o.Dates
	s.TaxIDs += o.TaxIDs
	s.Numbers += o.Numbers
	s.Liens += o.Liens
	s.Sales += o.Sales
}

// Normalize rewrites a raw document into its canonical form:
// dates in ISO form, tax ids and dotted numbers as digits, lien and sale
// amounts in canonical reais with their centavos.
//
// Normalizing a normalized document returns it unchanged.
func Normalize(raw []byte, folder string) ([]byte, NormalizeStats, error) {
	var stats NormalizeStats
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, stats, fmt.Errorf("could not read document: %w", err)
	}
	v = normalizeTree(v, &stats)
	tree, err := json.Marshal(v)
	if err != nil {
		return nil, stats, err
	}

	doc, _, err := Decode(tree, folder)
	if err != nil {
		return nil, stats, err
	}
	deed, ok := doc.(*PropertyDeed)
	if !ok {
		return tree, stats, nil
	}
	for _, l := range deed.Liens {
		if l != nil && l.normalizeAmount() {
			stats.Liens++
		}
	}
	for _, s := range deed.Sales {
		if s != nil && s.normalizeValue() {
			stats.Sales++
		}
	}
	out, err := json.Marshal(deed)
	return out, stats, err
}

func normalizeTree(v any, stats *NormalizeStats) any {
	switch v := v.(type) {
	case map[string]any:
		for k, member := range v {
			s, isString := member.(string)
			switch {
			case isString && dateKeys[k]:
				if iso := date.Canonical(s); iso != s {
					v[k] = iso
					stats.Dates++
				}
			case isString && taxIDKeys[strings.ToLower(k)]:
				if d := identity.Digits(s); d != "" && d != s {
					v[k] = d
					stats.TaxIDs++
				}
			case isString && numberKeys[k]:
				// "96/70042-4" keeps its punctuation, "176.700.530" does not
				if strings.Contains(s, ".") && !strings.Contains(s, "/") {
					if d := identity.Digits(s); d != "" && d != s {
						v[k] = d
						stats.Numbers++
					}
				}
			default:
				v[k] = normalizeTree(member, stats)
			}
		}
		return v
	case []any:
		for i := range v {
			v[i] = normalizeTree(v[i], stats)
		}
		return v
	default:
		return v
	}
}

// normalizeAmount sets the canonical debt amount and its centavos, from the
// original amount when known, else from the current one.
func (l *Lien) normalizeAmount() bool {
	src := strings.TrimSpace(l.OriginalAmount)
	if src == "" {
		src = strings.TrimSpace(l.Amount)
	}
	c, _, ok := ParseAmount(src)
	if !ok {
		return false
	}
	l.Amount = c.String()
	l.AmountCents = &c
	return true
}

// normalizeValue sets the canonical sale value and its centavos.
func (s *Sale) normalizeValue() bool {
	c, _, ok := ParseAmount(s.Value)
	if !ok {
		return false
	}
	s.Value = c.String()
	s.ValueCents = &c
	return true
}
