package taxengine_test

import (
	"testing"

	"go-hrms/internal/taxengine"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// flatPolicy removes insurances and deductions so taxable == gross,
// which makes bracket math directly observable.
func flatPolicy(brackets []taxengine.Bracket) taxengine.Policy {
	return taxengine.Policy{
		InsuranceCeiling: 1_000_000_000,
		SocialRate:       decimal.Zero,
		HealthRate:       decimal.Zero,
		UnemploymentRate: decimal.Zero,
		Brackets:         brackets,
	}
}

func TestCompute_DefaultPolicy(t *testing.T) {
	policy := taxengine.DefaultPolicy()

	t.Run("success typical salary", func(t *testing.T) {
		w := taxengine.Compute(30_000_000, 0, policy)

		assert.Equal(t, int64(2_400_000), w.SocialInsurance)
		assert.Equal(t, int64(450_000), w.HealthInsurance)
		assert.Equal(t, int64(300_000), w.UnemploymentInsurance)
		// taxable 15,850,000: 5M@5% + 5M@10% + 5.85M@15%
		assert.Equal(t, int64(1_627_500), w.PersonalIncomeTax)
		assert.Equal(t, int64(25_222_500), w.NetSalary)
	})

	t.Run("success insurance base capped at ceiling", func(t *testing.T) {
		w := taxengine.Compute(50_000_000, 0, policy)

		assert.Equal(t, int64(2_880_000), w.SocialInsurance)
		assert.Equal(t, int64(540_000), w.HealthInsurance)
		assert.Equal(t, int64(360_000), w.UnemploymentInsurance)
	})

	t.Run("success taxable below deduction pays no tax", func(t *testing.T) {
		w := taxengine.Compute(7_545_455, 0, policy)

		assert.Equal(t, int64(0), w.PersonalIncomeTax)
		assert.Equal(t, int64(603_636), w.SocialInsurance)
		assert.Equal(t, int64(113_182), w.HealthInsurance)
		assert.Equal(t, int64(75_455), w.UnemploymentInsurance)
		assert.Equal(t, int64(6_753_182), w.NetSalary)
	})

	t.Run("success dependents shrink taxable income", func(t *testing.T) {
		none := taxengine.Compute(30_000_000, 0, policy)
		two := taxengine.Compute(30_000_000, 2, policy)

		assert.Less(t, two.PersonalIncomeTax, none.PersonalIncomeTax)
		assert.Greater(t, two.NetSalary, none.NetSalary)
	})

	t.Run("negative gross yields zero withholdings", func(t *testing.T) {
		assert.Equal(t, taxengine.Withholdings{}, taxengine.Compute(0, 0, policy))
		assert.Equal(t, taxengine.Withholdings{}, taxengine.Compute(-100, 0, policy))
	})
}

func TestCompute_ProgressiveBrackets(t *testing.T) {
	brackets := []taxengine.Bracket{
		{Floor: 0, Rate: decimal.RequireFromString("0.05")},
		{Floor: 5_000_000, Rate: decimal.RequireFromString("0.10")},
		{Floor: 10_000_000, Rate: decimal.RequireFromString("0.15")},
	}
	policy := flatPolicy(brackets)

	t.Run("success income spread across brackets", func(t *testing.T) {
		w := taxengine.Compute(12_000_000, 0, policy)

		// 5M@5% + 5M@10% + 2M@15% = 250k + 500k + 300k
		assert.Equal(t, int64(1_050_000), w.PersonalIncomeTax)
		assert.Equal(t, int64(12_000_000-1_050_000), w.NetSalary)
	})

	t.Run("success income exactly at bracket boundary", func(t *testing.T) {
		w := taxengine.Compute(10_000_000, 0, policy)

		assert.Equal(t, int64(750_000), w.PersonalIncomeTax)
	})

	t.Run("success income inside first bracket", func(t *testing.T) {
		w := taxengine.Compute(4_000_000, 0, policy)

		assert.Equal(t, int64(200_000), w.PersonalIncomeTax)
	})
}

func TestCompute_Monotonicity(t *testing.T) {
	policy := taxengine.DefaultPolicy()

	var prevTax, prevNet int64
	for gross := int64(1_000_000); gross <= 120_000_000; gross += 1_000_000 {
		w := taxengine.Compute(gross, 1, policy)

		assert.GreaterOrEqual(t, w.PersonalIncomeTax, prevTax,
			"tax must not decrease as gross grows (gross=%d)", gross)
		assert.GreaterOrEqual(t, w.NetSalary, prevNet,
			"net must not decrease as gross grows (gross=%d)", gross)
		assert.GreaterOrEqual(t, w.NetSalary, int64(0))

		prevTax = w.PersonalIncomeTax
		prevNet = w.NetSalary
	}
}
