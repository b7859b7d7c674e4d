package model

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Instalment is one period of a repayment schedule.
type Instalment struct {
	DueDate          time.Time
	Principal        decimal.Decimal
	Interest         decimal.Decimal
	Payment          decimal.Decimal
	RemainingBalance decimal.Decimal
	Period           int
}

// RepaymentSchedule is a fixed-payment amortization plan for a recommended loan.
type RepaymentSchedule struct {
	Instalments    []Instalment
	Principal      decimal.Decimal
	MonthlyPayment decimal.Decimal
	TotalInterest  decimal.Decimal
	AnnualRatePct  float64
	TermMonths     int
}

// BuildRepaymentSchedule amortizes principal at annualRatePct percent over
// termMonths monthly payments, the first due one month after start.
//
//	r       = annualRatePct / 100 / 12
//	payment = P * r * (1+r)^n / ((1+r)^n - 1)
//
// The final instalment absorbs rounding so the balance reaches exactly zero.
// A non-positive principal or term yields an empty schedule.
func BuildRepaymentSchedule(
	principal decimal.Decimal,
	annualRatePct float64,
	termMonths int,
	start time.Time,
) RepaymentSchedule {
	schedule := RepaymentSchedule{
		Principal:     principal,
		AnnualRatePct: annualRatePct,
		TermMonths:    termMonths,
	}
	if termMonths <= 0 || !principal.IsPositive() {
		return schedule
	}

	monthlyRate := annualRatePct / 100 / 12

	var payment decimal.Decimal
	if monthlyRate == 0 {
		payment = principal.Div(decimal.NewFromInt(int64(termMonths))).Round(2)
	} else {
		growth := math.Pow(1+monthlyRate, float64(termMonths))
		payment = decimal.NewFromFloat(principal.InexactFloat64() * monthlyRate * growth / (growth - 1)).Round(2)
	}
	schedule.MonthlyPayment = payment

	rate := decimal.NewFromFloat(monthlyRate)
	remaining := principal
	totalInterest := decimal.Zero
	instalments := make([]Instalment, 0, termMonths)

	for period := 1; period <= termMonths; period++ {
		interest := remaining.Mul(rate).Round(2)
		principalPart := payment.Sub(interest)
		if period == termMonths || principalPart.GreaterThan(remaining) {
			principalPart = remaining
		}

		remaining = remaining.Sub(principalPart)
		totalInterest = totalInterest.Add(interest)

		instalments = append(instalments, Instalment{
			Period:           period,
			DueDate:          start.AddDate(0, period, 0),
			Principal:        principalPart,
			Interest:         interest,
			Payment:          principalPart.Add(interest),
			RemainingBalance: remaining,
		})
	}

	schedule.Instalments = instalments
	schedule.TotalInterest = totalInterest
	return schedule
}

// TotalPaid is the sum of all instalments.
func (s RepaymentSchedule) TotalPaid() decimal.Decimal {
	return s.Principal.Add(s.TotalInterest)
}
