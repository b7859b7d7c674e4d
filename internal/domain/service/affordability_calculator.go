package service

import (
	"fmt"
	"math"
	"sort"

	"github.com/lendwise/loanrisk/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// AffordabilityCalculator – closed-form maximum loan recommendation
// ---------------------------------------------------------------------------

// CreditBand grants Adjustment to credit scores at or above MinScore.
type CreditBand struct {
	MinScore   int
	Adjustment float64
}

// AffordabilityParams holds the constants of the affordability formula.
type AffordabilityParams struct {
	// CreditBands are matched highest MinScore first; scores below every band
	// receive FloorCreditAdjustment.
	CreditBands []CreditBand

	// BaseMultiplier is the share of annual income lendable to a zero-risk borrower.
	BaseMultiplier float64
	// MaxDTIRatio caps total monthly debt as a share of monthly income.
	MaxDTIRatio float64
	// AnnualInterestRate is the nominal rate used to discount payment capacity.
	AnnualInterestRate float64
	// IncomeCapRatio is the absolute ceiling as a share of annual income.
	IncomeCapRatio        float64
	FloorCreditAdjustment float64
	TermMonths            int
}

// DefaultAffordabilityParams returns the production constants.
func DefaultAffordabilityParams() AffordabilityParams {
	return AffordabilityParams{
		BaseMultiplier:     0.3,
		MaxDTIRatio:        0.43,
		AnnualInterestRate: 0.05,
		TermMonths:         60,
		IncomeCapRatio:     0.5,
		CreditBands: []CreditBand{
			{MinScore: 750, Adjustment: 1.2},
			{MinScore: 700, Adjustment: 1.1},
			{MinScore: 650, Adjustment: 1.0},
			{MinScore: 600, Adjustment: 0.8},
		},
		FloorCreditAdjustment: 0.6,
	}
}

// Validate checks that the parameters describe a usable formula.
func (p AffordabilityParams) Validate() error {
	switch {
	case p.BaseMultiplier <= 0:
		return fmt.Errorf("base multiplier must be positive, got %v", p.BaseMultiplier)
	case p.MaxDTIRatio <= 0 || p.MaxDTIRatio > 1:
		return fmt.Errorf("max DTI ratio must be in (0, 1], got %v", p.MaxDTIRatio)
	case p.AnnualInterestRate < 0:
		return fmt.Errorf("annual interest rate must not be negative, got %v", p.AnnualInterestRate)
	case p.TermMonths <= 0:
		return fmt.Errorf("term must be positive, got %d months", p.TermMonths)
	case p.IncomeCapRatio <= 0:
		return fmt.Errorf("income cap ratio must be positive, got %v", p.IncomeCapRatio)
	case p.FloorCreditAdjustment < 0:
		return fmt.Errorf("floor credit adjustment must not be negative, got %v", p.FloorCreditAdjustment)
	}
	return nil
}

// AffordabilityCalculator computes a recommended maximum loan from the risk
// probability, income, existing debt and credit score.
type AffordabilityCalculator struct {
	params        AffordabilityParams
	annuityFactor float64
}

// NewAffordabilityCalculator creates a calculator for params.
func NewAffordabilityCalculator(params AffordabilityParams) (*AffordabilityCalculator, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("affordability params: %w", err)
	}

	bands := make([]CreditBand, len(params.CreditBands))
	copy(bands, params.CreditBands)
	sort.SliceStable(bands, func(i, j int) bool { return bands[i].MinScore > bands[j].MinScore })
	params.CreditBands = bands

	return &AffordabilityCalculator{
		params:        params,
		annuityFactor: annuityFactor(params.AnnualInterestRate/12, params.TermMonths),
	}, nil
}

// Params returns the calculator's parameters.
func (c *AffordabilityCalculator) Params() AffordabilityParams {
	return c.params
}

// AnnuityFactor is the present value of one unit paid monthly over the term.
func (c *AffordabilityCalculator) AnnuityFactor() float64 {
	return c.annuityFactor
}

// CreditAdjustment returns the multiplier granted to creditScore.
func (c *AffordabilityCalculator) CreditAdjustment(creditScore int) float64 {
	for _, b := range c.params.CreditBands {
		if creditScore >= b.MinScore {
			return b.Adjustment
		}
	}
	return c.params.FloorCreditAdjustment
}

// Recommend runs the affordability formula. The steps run in a fixed order
// and use plain float64 arithmetic so results are reproducible bit for bit.
//
//	multiplier  = base * (1 - risk)
//	available   = income/12 * maxDTI - existingDebt
//	fromPayment = available * annuityFactor(rate/12, term)
//	fromIncome  = income * multiplier * creditAdjustment
//	recommended = max(0, min(fromPayment, fromIncome, income * cap))
//
// A borrower with no room under the DTI ceiling gets {0, 0}.
func (c *AffordabilityCalculator) Recommend(in valueobject.AssessmentInput) valueobject.LoanRecommendation {
	multiplier := c.params.BaseMultiplier * (1 - in.RiskScore)
	creditAdj := c.CreditAdjustment(in.CreditScore)

	monthlyIncome := in.AnnualIncome / 12
	maxTotalMonthlyDebt := monthlyIncome * c.params.MaxDTIRatio
	availablePayment := maxTotalMonthlyDebt - in.ExistingMonthlyDebt

	if availablePayment <= 0 {
		return valueobject.DebtCapacityExhausted(multiplier, creditAdj)
	}

	maxFromPayment := availablePayment * c.annuityFactor
	maxFromIncome := in.AnnualIncome * multiplier * creditAdj
	absoluteCap := in.AnnualIncome * c.params.IncomeCapRatio

	recommended := math.Min(maxFromPayment, math.Min(maxFromIncome, absoluteCap))
	recommended = math.Max(0, recommended)

	return valueobject.NewLoanRecommendation(recommended, availablePayment, multiplier, creditAdj)
}

// annuityFactor returns ((1+r)^n - 1) / (r * (1+r)^n), or n when r is zero.
func annuityFactor(monthlyRate float64, n int) float64 {
	if monthlyRate == 0 {
		return float64(n)
	}
	growth := math.Pow(1+monthlyRate, float64(n))
	return (growth - 1) / (monthlyRate * growth)
}

var defaultCalculator = mustDefaultCalculator()

func mustDefaultCalculator() *AffordabilityCalculator {
	c, err := NewAffordabilityCalculator(DefaultAffordabilityParams())
	if err != nil {
		panic(err)
	}
	return c
}

// RecommendLoan runs the affordability formula with the default parameters.
func RecommendLoan(riskScore, annualIncome, existingMonthlyDebt float64, creditScore int) valueobject.LoanRecommendation {
	return defaultCalculator.Recommend(valueobject.AssessmentInput{
		RiskScore:           riskScore,
		AnnualIncome:        annualIncome,
		ExistingMonthlyDebt: existingMonthlyDebt,
		CreditScore:         creditScore,
	})
}
