package monetary

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/etnz/cadobr"
	"github.com/etnz/cadobr/date"
	"github.com/shopspring/decimal"
)

func cents(c cadobr.Cents) *cadobr.Cents { return &c }

func yes() *bool { b := true; return &b }

func TestExtractRate(t *testing.T) {
	tests := []struct {
		text     string
		wantRate string
		wantKind RateKind
	}{
		{"juros de 12% ao ano", "0.12", Annual},
		{"Juros de 12,680% efetivos ao ano", "0.1268", Annual},
		{"1,5% ao mês", "0.015", Monthly},
		{"juros mensais de 1.2 ao mes", "0.012", Monthly},
		{"taxa de juros 9 anuais", "0.09", Annual},
		{"12% ao ano, capitalizados mensalmente", "0", Unknown},
		{"12% fixos", "0", Unknown},
		{"250% ao ano", "0", Unknown},
		{"0% ao ano", "0", Unknown},
		{"ao ano", "0", Unknown},
		{"conforme contrato", "0", Absent},
		{"", "0", Absent},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			rate, kind := ExtractRate(tt.text)
			if kind != tt.wantKind {
				t.Errorf("ExtractRate(%q) kind = %v, want %v", tt.text, kind, tt.wantKind)
			}
			if !rate.Equal(decimal.RequireFromString(tt.wantRate)) {
				t.Errorf("ExtractRate(%q) rate = %v, want %v", tt.text, rate, tt.wantRate)
			}
		})
	}
}

func TestUsesIndex(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"12% ao ano + TR", true},
		{"correção pela TR", true},
		{"Taxa Referencial mais 6% ao ano", true},
		{"12% ao ano, pagamento trimestral", false},
		{"12% ao ano", false},
	}
	for _, tt := range tests {
		if got := UsesIndex(tt.text); got != tt.want {
			t.Errorf("UsesIndex(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestValueRules(t *testing.T) {
	base := func() *cadobr.Lien {
		return &cadobr.Lien{
			DebtType:    "HIPOTECA",
			Effective:   "2001-01-01",
			Discharged:  "2002-01-01",
			AmountCents: cents(6000000),
			Rates:       "juros de 12% ao ano",
		}
	}
	tests := []struct {
		name   string
		edit   func(l *cadobr.Lien)
		rule   string
		motive string
	}{
		{"computed", func(l *cadobr.Lien) {}, RuleComputed, MotiveComputed},
		{"leasing", func(l *cadobr.Lien) { l.DebtType = "ARRENDAMENTO MERCANTIL" }, RuleExcludedType, MotiveExcludedType},
		{"no effective date", func(l *cadobr.Lien) { l.Effective = "" }, RuleInsufficient, MotiveNoEffectiveDate},
		{"settled without date", func(l *cadobr.Lien) { l.Discharged = ""; l.Settled = yes() }, RuleDischargeFlag, MotiveDischargeFlag},
		{"cancelled without date", func(l *cadobr.Lien) { l.Discharged = ""; l.Cancelled = yes() }, RuleDischargeFlag, MotiveDischargeFlag},
		{"open", func(l *cadobr.Lien) { l.Discharged = "" }, RuleOpenDebt, MotiveOpenDebt},
		{"discharge before effective", func(l *cadobr.Lien) { l.Discharged = "2000-12-31" }, RuleDates, MotiveDates},
		{"no amount", func(l *cadobr.Lien) { l.AmountCents = nil }, RuleInsufficient, MotiveNoAmount},
		{"ambiguous rate", func(l *cadobr.Lien) { l.Rates = "12% ao ano ou 1% ao mês" }, RuleRate, MotiveRate},
		{"no rate", func(l *cadobr.Lien) { l.Rates = "" }, RuleRate, MotiveRate},
	}
	e := NewEngine(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := base()
			tt.edit(l)
			v, _, ok := e.Value(l)
			if v.Rule != tt.rule || v.Motive != tt.motive {
				t.Errorf("Value() = %s %q, want %s %q", v.Rule, v.Motive, tt.rule, tt.motive)
			}
			if ok != (tt.rule == RuleComputed) || v.Computed != ok {
				t.Errorf("Value() computed = %v, %v", ok, v.Computed)
			}
		})
	}
}

func TestValueAnnual(t *testing.T) {
	l := &cadobr.Lien{
		Effective:   "2001-01-01",
		Discharged:  "2002-01-01",
		AmountCents: cents(6000000),
		Rates:       "juros de 12% ao ano",
	}
	v, got, ok := NewEngine(nil).Value(l)
	if !ok {
		t.Fatalf("Value() not computed: %+v", v)
	}
	if got != 6720000 {
		t.Errorf("Value() = %d, want 6720000", got)
	}
	d := v.Details
	if d.Days != 365 || d.Regime != RegimeAnnual || d.BaseCents != 6000000 || d.PresentCents != 6720000 {
		t.Errorf("Details = %+v", d)
	}
	if !d.InterestRatio.Equal(decimal.RequireFromString("1.12")) || !d.IndexRatio.Equal(one) {
		t.Errorf("ratios = %v, %v", d.InterestRatio, d.IndexRatio)
	}
	if v.RateKind != string(Annual) || v.UsesIndex {
		t.Errorf("Value() = %+v", v)
	}
}

func TestValueMonthly(t *testing.T) {
	l := &cadobr.Lien{
		Effective:  "2001-01-01",
		Discharged: "2001-01-31",
		Amount:     "R$ 1.000,00",
		Rates:      "1% ao mês",
	}
	v, got, ok := NewEngine(nil).Value(l)
	if !ok {
		t.Fatalf("Value() not computed: %+v", v)
	}
	if got != 101000 {
		t.Errorf("Value() = %d, want 101000", got)
	}
	if v.Details.Regime != RegimeMonthly {
		t.Errorf("Regime = %q", v.Details.Regime)
	}
}

func TestValueFractionalPeriod(t *testing.T) {
	l := &cadobr.Lien{
		Effective:   "2001-01-01",
		Discharged:  "2001-07-01", // 181 days
		AmountCents: cents(10000000),
		Rates:       "10% ao ano",
	}
	_, got, ok := NewEngine(nil).Value(l)
	if !ok {
		t.Fatal("Value() not computed")
	}
	want := 10000000 * math.Pow(1.1, 181.0/365.0)
	if math.Abs(float64(got)-want) > 1 {
		t.Errorf("Value() = %d, want about %.0f", got, want)
	}
}

func TestValueBaseAmountPriority(t *testing.T) {
	legacy := decimal.RequireFromString("500.00")
	l := &cadobr.Lien{
		Effective:      "2001-01-01",
		Discharged:     "2001-01-01",
		LegacyAmount:   &legacy,
		Amount:         "R$ 900,00",
		OriginalAmount: "R$ 700,00",
		Rates:          "5% ao ano",
	}
	e := NewEngine(nil)
	if _, got, _ := e.Value(l); got != 50000 {
		t.Errorf("legacy amount: Value() = %d, want 50000", got)
	}
	l.LegacyAmount = nil
	if _, got, _ := e.Value(l); got != 90000 {
		t.Errorf("current amount: Value() = %d, want 90000", got)
	}
	l.Amount = "a combinar"
	if _, got, _ := e.Value(l); got != 70000 {
		t.Errorf("original amount: Value() = %d, want 70000", got)
	}
}

type fakeIndex map[date.YearMonth]decimal.Decimal

func (f fakeIndex) Rate(m date.YearMonth) (decimal.Decimal, bool) {
	v, ok := f[m]
	return v, ok
}

func TestValueWithIndex(t *testing.T) {
	l := &cadobr.Lien{
		Effective:   "2001-01-15",
		Discharged:  "2001-03-10",
		AmountCents: cents(100000),
		Rates:       "0,5% ao mês + TR",
	}

	v, _, ok := NewEngine(nil).Value(l)
	if !ok || !v.UsesIndex || v.IndexUsed || v.IndexMotive != IndexNotLoaded {
		t.Errorf("without table: %+v", v)
	}

	index := fakeIndex{
		{Year: 2001, Month: time.January}: decimal.RequireFromString("0.01"),
		{Year: 2001, Month: time.March}:   decimal.RequireFromString("0.01"),
	}
	v, _, ok = NewEngine(index).Value(l)
	if !ok || !v.IndexUsed {
		t.Fatalf("with table: %+v", v)
	}
	if v.IndexMotive != IndexMissingData || len(v.IndexGaps) != 1 || v.IndexGaps[0] != "2001-02" {
		t.Errorf("gaps = %q %v", v.IndexMotive, v.IndexGaps)
	}
	if !v.Details.IndexRatio.Equal(decimal.RequireFromString("1.0201")) {
		t.Errorf("IndexRatio = %v, want 1.0201", v.Details.IndexRatio)
	}
	if p := v.Details.IndexPeriod; p == nil || p.From != "2001-01" || p.To != "2001-03" || p.Months != 3 {
		t.Errorf("IndexPeriod = %+v", p)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	l := &cadobr.Lien{
		Effective:   "2001-01-01",
		Discharged:  "2002-01-01",
		AmountCents: cents(6000000),
		Rates:       "12% ao ano",
	}
	e := NewEngine(nil)
	e.Apply(l)
	first, _ := json.Marshal(l)
	e.Apply(l)
	second, _ := json.Marshal(l)
	if string(first) != string(second) {
		t.Errorf("Apply() is not idempotent:\n%s\n%s", first, second)
	}
	if l.PresentValue != "67.200,00" || l.PresentCents == nil || *l.PresentCents != 6720000 {
		t.Errorf("Apply() = %q %v", l.PresentValue, l.PresentCents)
	}

	l.Discharged = ""
	e.Apply(l)
	if l.PresentValue != "" || l.PresentCents != nil || l.Valuation.Computed {
		t.Errorf("Apply() kept a stale present value: %+v", l)
	}
}

func TestEnrich(t *testing.T) {
	raw := `{"matricula":"1","hipotecas_onus":[
		{"registro_ou_averbacao":"R.1","data_efetiva":"2001-01-01","data_baixa":"2002-01-01","valor_divida_num":6000000,"taxas":"12% ao ano"},
		{"registro_ou_averbacao":"R.2","tipo_divida":"LEASING"}]}`
	out, report, err := NewEngine(nil).Enrich([]byte(raw), "escritura_imovel")
	if err != nil {
		t.Fatalf("Enrich() error: %v", err)
	}
	if report[RuleComputed] != 1 || report[RuleExcludedType] != 1 {
		t.Errorf("Enrich() report = %v", report)
	}
	for _, want := range []string{`"valor_presente_num":6720000`, `"regra_aplicada":"R2"`, `"calculado":true`} {
		if !strings.Contains(string(out), want) {
			t.Errorf("Enrich() = %s, want it to contain %s", out, want)
		}
	}

	other := `{"tipo_documento":"Contrato Social","socios":[]}`
	out, _, err = NewEngine(nil).Enrich([]byte(other), "")
	if err != nil || string(out) != other {
		t.Errorf("Enrich() changed a charter: %s, %v", out, err)
	}
}
