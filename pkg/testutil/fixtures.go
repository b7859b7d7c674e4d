package testutil

import "math"

// Fixed customer references for deterministic testing.
const (
	TestCustomerID1 = "CUST-0001"
	TestCustomerID2 = "CUST-0002"
)

// BorrowerFeatures returns a complete model input for a salaried borrower
// earning 1.2M a year with 20K monthly debt payments and a 780 credit score.
// Callers may mutate the returned map.
func BorrowerFeatures() map[string]any {
	return map[string]any{
		"Age":                        35.0,
		"Experience":                 12.0,
		"JobTenure":                  5.0,
		"CreditScore":                780.0,
		"PaymentHistory":             0.95,
		"LengthOfCreditHistory":      14.0,
		"NumberOfOpenCreditLines":    3.0,
		"NumberOfCreditInquiries":    1.0,
		"PreviousLoanDefaults":       0.0,
		"BankruptcyHistory":          0.0,
		"UtilityBillsPaymentHistory": 0.9,
		"LoanDuration":               60.0,
		"BaseInterestRate":           0.05,
		"InterestRate":               0.06,
		"TotalDebtToIncomeRatio":     0.2,
		"MonthlyIncome_log":          math.Log(100_000),
		"AnnualIncome_log":           math.Log(1_200_000),
		"SavingsAccountBalance_log":  math.Log(50_000),
		"CheckingAccountBalance_log": math.Log(8_000),
		"NetWorth_log":               math.Log(400_000),
		"TotalAssets_log":            math.Log(600_000),
		"TotalLiabilities_log":       math.Log(200_000),
		"MonthlyLoanPayment_log":     math.Log(1_500),
		"LoanAmount_log":             math.Log(80_000),
		"MonthlyDebtPayments_log":    math.Log(20_000),
		"EmploymentStatus":           "Employed",
		"EducationLevel":             "Master",
		"MaritalStatus":              "Married",
		"HomeOwnershipStatus":        "Mortgage",
		"LoanPurpose":                "Home",
	}
}
