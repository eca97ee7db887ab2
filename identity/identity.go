// Package identity derives the deterministic keys of parties, properties,
// obligations and every other record of a dataset.
//
// Every function is a pure function of its arguments: the same input always
// yields the same key, whatever the order documents are read in.
//
// Name based party keys are approximate. Two spellings of the same person
// share a key only when their primary names reduce to the same text.
package identity

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Prefixes of the keys produced by this package.
const (
	CPF         = "cpf:"
	CNPJ        = "cnpj:"
	Name        = "name:"
	Matricula   = "matricula:"
	OperationNo = "op:"
)

// Hash12 returns the first 12 hex digits of the sha1 of s.
func Hash12(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// Key returns prefix + "_" + Hash12 of parts joined by "|".
func Key(prefix string, parts ...string) string {
	return prefix + "_" + Hash12(strings.Join(parts, "|"))
}

// Digits returns the decimal digits of s.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Party returns the key of a party: a well formed cpf (11 digits), else a
// well formed cnpj (14 digits), else the fingerprint of its primary name.
// It returns "" when nothing identifies the party.
func Party(cpf, cnpj, name string) string {
	if d := Digits(cpf); len(d) == 11 {
		return CPF + d
	}
	if d := Digits(cnpj); len(d) == 14 {
		return CNPJ + d
	}
	if p := PrimaryName(name); p != "" {
		return Name + Hash12(p)
	}
	return ""
}

var (
	honorifics = map[string]bool{
		"SR": true, "SRA": true, "SENHOR": true, "SENHORA": true, "DONA": true,
		"DON": true, "DR": true, "DRA": true, "DOUTOR": true, "DOUTORA": true,
	}
	// qualifiers that end the primary name: marital status, then spouse.
	qualifiers = []string{
		" SOLTEIR", " CASAD", " VIU", " DIVORCIAD", " SEPARAD",
		" E SUA MULHER", " E SEU MARIDO", " E SUA ESPOSA", " E SEU ESPOSO",
	}
	punctuation = regexp.MustCompile(`[.,;:'"()\[\]]`)
	spaces      = regexp.MustCompile(`\s+`)
)

// StripAccents removes diacritics: "JOÃO" becomes "JOAO".
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeName uppercases, strips accents and light punctuation, and collapses whitespace.
func NormalizeName(name string) string {
	s := StripAccents(strings.ToUpper(name))
	s = punctuation.ReplaceAllString(s, " ")
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

// PrimaryName reduces a name as written in a deed to the name of the person
// alone: no leading honorific, no marital status, no spouse.
func PrimaryName(name string) string {
	s := NormalizeName(name)
	if first, rest, ok := strings.Cut(s, " "); ok && honorifics[first] {
		s = rest
	}
	cut := len(s)
	for _, q := range qualifiers {
		if i := strings.Index(s, q); i >= 0 && i < cut {
			cut = i
		}
	}
	return strings.TrimSpace(s[:cut])
}

// Property returns the key of the property registered under matricula, or "" without digits.
func Property(matricula string) string {
	d := Digits(matricula)
	if d == "" {
		return ""
	}
	return Matricula + d
}

// Operation returns the key of a credit operation from its number, or "" without digits.
func Operation(number string) string {
	d := Digits(number)
	if d == "" {
		return ""
	}
	return OperationNo + d
}

var registryRef = regexp.MustCompile(`^(AV|R)\s*[.\-]?\s*(\d+)`)

// RegistryRef normalizes a registry entry reference: "r. 5", "R-5" and "R5"
// all become "R.5", "Av 24" becomes "AV.24".
func RegistryRef(ref string) string {
	s := strings.TrimSpace(spaces.ReplaceAllString(strings.ToUpper(ref), " "))
	return registryRef.ReplaceAllString(s, "$1.$2")
}

// Obligation returns the key of the lien recorded under ref on a property.
func Obligation(propertyID, ref string) string {
	r := RegistryRef(ref)
	if propertyID == "" || r == "" {
		return ""
	}
	return propertyID + "#" + r
}

// Document returns the key of a document read at stage from path.
func Document(stage, kind, path string) string {
	return Key("doc", stage, kind, path)
}
