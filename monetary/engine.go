// Package monetary computes the present value of liens: compound interest
// from the effective date to the discharge date, optionally corrected by a
// monthly reference index.
//
// A lien that cannot be valued is not an error. Its valuation says why, with
// a rule code and a motive.
package monetary

import (
	"strings"

	"github.com/etnz/cadobr"
	"github.com/etnz/cadobr/date"
	"github.com/shopspring/decimal"
)

// Rule codes recorded in a valuation.
const (
	RuleExcludedType  = "R2"
	RuleDischargeFlag = "R5"
	RuleOpenDebt      = "R6"
	RuleComputed      = "R7"
	RuleRate          = "R8"
	RuleDates         = "R11"
	RuleInsufficient  = "R13"
)

// Motives recorded in a valuation.
const (
	MotiveExcludedType    = "excluded_by_debt_type"
	MotiveNoEffectiveDate = "insufficient_data: no_effective_date"
	MotiveDischargeFlag   = "discharge_flag_without_discharge_date"
	MotiveOpenDebt        = "open_debt_not_discharged"
	MotiveDates           = "inconsistent_dates: discharge_before_effective"
	MotiveNoAmount        = "insufficient_data: no_valid_debt_amount"
	MotiveRate            = "unsupported_rate_expression"
	MotiveInvalidRate     = "invalid_rate_for_compounding"
	MotiveComputed        = "computed"

	IndexNotLoaded   = "index_table_not_loaded"
	IndexMissingData = "index_applied_with_missing_months"
)

// Interest regimes.
const (
	RegimeAnnual  = "composto_anual_dias_365"
	RegimeMonthly = "composto_mensal_mes_comercial"
)

// Leasing operations are never valued.
var excludedTypes = []string{"ARRENDAMENTO MERCANTIL", "LEASING"}

// powPrecision is the number of decimal places kept when raising to a fractional power.
const powPrecision = 16

// ratioPlaces is the number of decimal places reported for factors.
const ratioPlaces = 10

var (
	one       = decimal.NewFromInt(1)
	daysYear  = decimal.NewFromInt(365)
	daysMonth = decimal.NewFromInt(30)
)

// IndexSource provides the monthly reference index as fractions.
type IndexSource interface {
	Rate(m date.YearMonth) (decimal.Decimal, bool)
}

// Engine values liens. It is safe for concurrent use.
type Engine struct {
	index IndexSource
}

// NewEngine returns an engine using index for TR correction. index may be nil,
// liens asking for TR are then valued without it.
func NewEngine(index IndexSource) *Engine {
	return &Engine{index: index}
}

// Value returns the valuation of l and its present value when computed.
func (e *Engine) Value(l *cadobr.Lien) (cadobr.Valuation, cadobr.Cents, bool) {
	fail := func(rule, motive string) (cadobr.Valuation, cadobr.Cents, bool) {
		return cadobr.Valuation{Rule: rule, Motive: motive}, 0, false
	}

	kind := strings.ToUpper(l.DebtType)
	for _, ex := range excludedTypes {
		if strings.Contains(kind, ex) {
			return fail(RuleExcludedType, MotiveExcludedType)
		}
	}

	effective, err := date.ParseText(l.Effective)
	if err != nil {
		return fail(RuleInsufficient, MotiveNoEffectiveDate)
	}
	discharged, err := date.ParseText(l.Discharged)
	flagged := l.IsSettled() || l.IsCancelled()
	switch {
	case err != nil && flagged:
		return fail(RuleDischargeFlag, MotiveDischargeFlag)
	case err != nil:
		return fail(RuleOpenDebt, MotiveOpenDebt)
	case discharged.Before(effective):
		return fail(RuleDates, MotiveDates)
	}

	base, ok := baseAmount(l)
	if !ok {
		return fail(RuleInsufficient, MotiveNoAmount)
	}

	rate, rateKind := ExtractRate(l.Rates)
	if rateKind != Annual && rateKind != Monthly {
		v, c, ok := fail(RuleRate, MotiveRate)
		v.RateKind = string(rateKind)
		return v, c, ok
	}
	if rate.LessThanOrEqual(one.Neg()) {
		v, c, ok := fail(RuleRate, MotiveInvalidRate)
		v.RateKind = string(rateKind)
		return v, c, ok
	}

	days := discharged.DaysSince(effective)
	period, regime := daysYear, RegimeAnnual
	if rateKind == Monthly {
		period, regime = daysMonth, RegimeMonthly
	}
	exponent := decimal.NewFromInt(int64(days)).Div(period)
	interest, err := one.Add(rate).PowWithPrecision(exponent, powPrecision)
	if err != nil {
		v, c, ok := fail(RuleRate, MotiveInvalidRate)
		v.RateKind = string(rateKind)
		return v, c, ok
	}

	v := cadobr.Valuation{
		Computed:  true,
		Rule:      RuleComputed,
		Motive:    MotiveComputed,
		RateKind:  string(rateKind),
		UsesIndex: UsesIndex(l.Rates),
	}
	index := one
	var span *cadobr.IndexPeriod
	if v.UsesIndex {
		index, span = e.correction(&v, effective, discharged)
	}

	present := cadobr.CentsOf(base.Decimal().Mul(interest).Mul(index))
	v.Details = &cadobr.Calculation{
		From:          effective.String(),
		To:            discharged.String(),
		Days:          days,
		Regime:        regime,
		BaseCents:     base,
		PresentCents:  present,
		RatePercent:   rate.Mul(hundred),
		InterestRatio: interest.Round(ratioPlaces),
		IndexRatio:    index.Round(ratioPlaces),
		IndexPeriod:   span,
	}
	return v, present, true
}

// correction compounds the index over every month from 'from' to 'to', both included.
// Months missing from the table count as zero and are listed in v.
func (e *Engine) correction(v *cadobr.Valuation, from, to date.Date) (decimal.Decimal, *cadobr.IndexPeriod) {
	if e.index == nil {
		v.IndexMotive = IndexNotLoaded
		return one, nil
	}
	factor := one
	p := &cadobr.IndexPeriod{From: from.YearMonth().String(), To: to.YearMonth().String()}
	for m := range date.Months(from, to) {
		p.Months++
		r, ok := e.index.Rate(m)
		if !ok {
			v.IndexGaps = append(v.IndexGaps, m.String())
			continue
		}
		factor = factor.Mul(one.Add(r))
	}
	v.IndexUsed = true
	if len(v.IndexGaps) > 0 {
		v.IndexMotive = IndexMissingData
	}
	return factor, p
}

// baseAmount returns the debt amount, from the most reliable member available:
// centavos, then legacy reais, then the current and original amount texts.
func baseAmount(l *cadobr.Lien) (cadobr.Cents, bool) {
	if l.AmountCents != nil {
		return *l.AmountCents, true
	}
	if l.LegacyAmount != nil {
		return cadobr.CentsOf(*l.LegacyAmount), true
	}
	for _, s := range []string{l.Amount, l.OriginalAmount} {
		if c, _, ok := cadobr.ParseAmount(s); ok {
			return c, true
		}
	}
	return 0, false
}

// Apply values l and records the outcome on it.
func (e *Engine) Apply(l *cadobr.Lien) cadobr.Valuation {
	v, present, ok := e.Value(l)
	l.PresentValue, l.PresentCents = "", nil
	if ok {
		l.PresentValue = present.String()
		l.PresentCents = &present
	}
	l.Valuation = &v
	return v
}

// Report counts valuations by rule code.
type Report map[string]int

// Add accumulates o into r.
func (r Report) Add(o Report) {
	for k, n := range o {
		r[k] += n
	}
}

// ApplyDeed values every lien of a property deed.
func (e *Engine) ApplyDeed(d *cadobr.PropertyDeed) Report {
	r := make(Report)
	for _, l := range d.Liens {
		if l == nil {
			continue
		}
		v := e.Apply(l)
		r[v.Rule]++
	}
	return r
}
