package taxengine

import (
	"github.com/shopspring/decimal"
)

// Statutory defaults for monthly VND payroll. Rates and thresholds are
// carried on a Policy so deployments can override them when the
// regulation changes without touching the engine.
const (
	DefaultInsuranceCeiling    int64 = 36_000_000
	DefaultPersonalDeduction   int64 = 11_000_000
	DefaultDependentDeduction  int64 = 4_400_000
	socialInsuranceRatePct           = "0.08"
	healthInsuranceRatePct           = "0.015"
	unemploymentInsRatePct           = "0.01"
)

// Bracket is one progressive slice: the marginal rate applies only to
// taxable income above Floor, up to the next bracket's floor.
type Bracket struct {
	Floor int64
	Rate  decimal.Decimal
}

type Policy struct {
	InsuranceCeiling   int64
	PersonalDeduction  int64
	DependentDeduction int64
	SocialRate         decimal.Decimal
	HealthRate         decimal.Decimal
	UnemploymentRate   decimal.Decimal
	Brackets           []Bracket
}

// DefaultPolicy returns the current statutory schedule: 8%/1.5%/1%
// insurances on a capped base and seven PIT brackets at
// 5/10/18/32/52/80 million monthly thresholds.
func DefaultPolicy() Policy {
	return Policy{
		InsuranceCeiling:   DefaultInsuranceCeiling,
		PersonalDeduction:  DefaultPersonalDeduction,
		DependentDeduction: DefaultDependentDeduction,
		SocialRate:         decimal.RequireFromString(socialInsuranceRatePct),
		HealthRate:         decimal.RequireFromString(healthInsuranceRatePct),
		UnemploymentRate:   decimal.RequireFromString(unemploymentInsRatePct),
		Brackets: []Bracket{
			{Floor: 0, Rate: decimal.RequireFromString("0.05")},
			{Floor: 5_000_000, Rate: decimal.RequireFromString("0.10")},
			{Floor: 10_000_000, Rate: decimal.RequireFromString("0.15")},
			{Floor: 18_000_000, Rate: decimal.RequireFromString("0.20")},
			{Floor: 32_000_000, Rate: decimal.RequireFromString("0.25")},
			{Floor: 52_000_000, Rate: decimal.RequireFromString("0.30")},
			{Floor: 80_000_000, Rate: decimal.RequireFromString("0.35")},
		},
	}
}

type Withholdings struct {
	SocialInsurance       int64
	HealthInsurance       int64
	UnemploymentInsurance int64
	PersonalIncomeTax     int64
	NetSalary             int64
}

// Compute derives the statutory withholdings and net pay for one month
// of gross salary. Pure: no state, no I/O. Intermediates stay decimal;
// rounding to whole VND happens only on the returned fields.
func Compute(gross int64, dependents int, policy Policy) Withholdings {
	if gross <= 0 {
		return Withholdings{}
	}

	grossDec := decimal.NewFromInt(gross)

	insuranceBase := grossDec
	ceiling := decimal.NewFromInt(policy.InsuranceCeiling)
	if grossDec.GreaterThan(ceiling) {
		insuranceBase = ceiling
	}

	social := insuranceBase.Mul(policy.SocialRate)
	health := insuranceBase.Mul(policy.HealthRate)
	unemployment := insuranceBase.Mul(policy.UnemploymentRate)

	deductions := decimal.NewFromInt(policy.PersonalDeduction).
		Add(decimal.NewFromInt(policy.DependentDeduction).Mul(decimal.NewFromInt(int64(dependents))))

	taxable := grossDec.Sub(social).Sub(health).Sub(unemployment).Sub(deductions)
	tax := progressiveTax(taxable, policy.Brackets)

	net := grossDec.Sub(social).Sub(health).Sub(unemployment).Sub(tax)
	if net.IsNegative() {
		net = decimal.Zero
	}

	return Withholdings{
		SocialInsurance:       social.Round(0).IntPart(),
		HealthInsurance:       health.Round(0).IntPart(),
		UnemploymentInsurance: unemployment.Round(0).IntPart(),
		PersonalIncomeTax:     tax.Round(0).IntPart(),
		NetSalary:             net.Round(0).IntPart(),
	}
}

// progressiveTax sums, per bracket, the slice of taxable income that
// falls inside it times that bracket's marginal rate. Income never pays
// the top rate on the whole amount.
func progressiveTax(taxable decimal.Decimal, brackets []Bracket) decimal.Decimal {
	if taxable.LessThanOrEqual(decimal.Zero) || len(brackets) == 0 {
		return decimal.Zero
	}

	tax := decimal.Zero
	for i, bracket := range brackets {
		floor := decimal.NewFromInt(bracket.Floor)
		if taxable.LessThanOrEqual(floor) {
			break
		}

		slice := taxable.Sub(floor)
		if i+1 < len(brackets) {
			width := decimal.NewFromInt(brackets[i+1].Floor - bracket.Floor)
			if slice.GreaterThan(width) {
				slice = width
			}
		}

		tax = tax.Add(slice.Mul(bracket.Rate))
	}

	return tax
}
