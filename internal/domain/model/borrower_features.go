package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lendwise/loanrisk/internal/domain/valueobject"
)

// BorrowerFeatures is the model input: the thirty columns the risk model was
// trained on. Monetary magnitudes arrive log-transformed (the *Log fields).
type BorrowerFeatures struct {
	EmploymentStatus    string `json:"EmploymentStatus" validate:"required"`
	EducationLevel      string `json:"EducationLevel" validate:"required"`
	MaritalStatus       string `json:"MaritalStatus" validate:"required"`
	HomeOwnershipStatus string `json:"HomeOwnershipStatus" validate:"required"`
	LoanPurpose         string `json:"LoanPurpose" validate:"required"`

	Age                        float64 `json:"Age" validate:"gte=18,lte=120"`
	Experience                 float64 `json:"Experience" validate:"gte=0"`
	JobTenure                  float64 `json:"JobTenure" validate:"gte=0"`
	CreditScore                float64 `json:"CreditScore" validate:"gte=300,lte=850"`
	PaymentHistory             float64 `json:"PaymentHistory" validate:"gte=0"`
	LengthOfCreditHistory      float64 `json:"LengthOfCreditHistory" validate:"gte=0"`
	NumberOfOpenCreditLines    float64 `json:"NumberOfOpenCreditLines" validate:"gte=0"`
	NumberOfCreditInquiries    float64 `json:"NumberOfCreditInquiries" validate:"gte=0"`
	PreviousLoanDefaults       float64 `json:"PreviousLoanDefaults" validate:"gte=0"`
	BankruptcyHistory          float64 `json:"BankruptcyHistory" validate:"gte=0"`
	UtilityBillsPaymentHistory float64 `json:"UtilityBillsPaymentHistory" validate:"gte=0"`
	LoanDuration               float64 `json:"LoanDuration" validate:"gt=0"`
	BaseInterestRate           float64 `json:"BaseInterestRate" validate:"gte=0"`
	InterestRate               float64 `json:"InterestRate" validate:"gte=0"`
	TotalDebtToIncomeRatio     float64 `json:"TotalDebtToIncomeRatio" validate:"gte=0"`
	MonthlyIncomeLog           float64 `json:"MonthlyIncome_log"`
	AnnualIncomeLog            float64 `json:"AnnualIncome_log"`
	SavingsAccountBalanceLog   float64 `json:"SavingsAccountBalance_log"`
	CheckingAccountBalanceLog  float64 `json:"CheckingAccountBalance_log"`
	NetWorthLog                float64 `json:"NetWorth_log"`
	TotalAssetsLog             float64 `json:"TotalAssets_log"`
	TotalLiabilitiesLog        float64 `json:"TotalLiabilities_log"`
	MonthlyLoanPaymentLog      float64 `json:"MonthlyLoanPayment_log"`
	LoanAmountLog              float64 `json:"LoanAmount_log"`
	MonthlyDebtPaymentsLog     float64 `json:"MonthlyDebtPayments_log"`
}

type featureField struct {
	name    string
	numeric func(f *BorrowerFeatures) *float64
	text    func(f *BorrowerFeatures) *string
}

// featureFields lists the model columns in training order.
var featureFields = []featureField{
	{name: "Age", numeric: func(f *BorrowerFeatures) *float64 { return &f.Age }},
	{name: "Experience", numeric: func(f *BorrowerFeatures) *float64 { return &f.Experience }},
	{name: "JobTenure", numeric: func(f *BorrowerFeatures) *float64 { return &f.JobTenure }},
	{name: "CreditScore", numeric: func(f *BorrowerFeatures) *float64 { return &f.CreditScore }},
	{name: "PaymentHistory", numeric: func(f *BorrowerFeatures) *float64 { return &f.PaymentHistory }},
	{name: "LengthOfCreditHistory", numeric: func(f *BorrowerFeatures) *float64 { return &f.LengthOfCreditHistory }},
	{name: "NumberOfOpenCreditLines", numeric: func(f *BorrowerFeatures) *float64 { return &f.NumberOfOpenCreditLines }},
	{name: "NumberOfCreditInquiries", numeric: func(f *BorrowerFeatures) *float64 { return &f.NumberOfCreditInquiries }},
	{name: "PreviousLoanDefaults", numeric: func(f *BorrowerFeatures) *float64 { return &f.PreviousLoanDefaults }},
	{name: "BankruptcyHistory", numeric: func(f *BorrowerFeatures) *float64 { return &f.BankruptcyHistory }},
	{name: "UtilityBillsPaymentHistory", numeric: func(f *BorrowerFeatures) *float64 { return &f.UtilityBillsPaymentHistory }},
	{name: "LoanDuration", numeric: func(f *BorrowerFeatures) *float64 { return &f.LoanDuration }},
	{name: "BaseInterestRate", numeric: func(f *BorrowerFeatures) *float64 { return &f.BaseInterestRate }},
	{name: "InterestRate", numeric: func(f *BorrowerFeatures) *float64 { return &f.InterestRate }},
	{name: "TotalDebtToIncomeRatio", numeric: func(f *BorrowerFeatures) *float64 { return &f.TotalDebtToIncomeRatio }},
	{name: "MonthlyIncome_log", numeric: func(f *BorrowerFeatures) *float64 { return &f.MonthlyIncomeLog }},
	{name: "AnnualIncome_log", numeric: func(f *BorrowerFeatures) *float64 { return &f.AnnualIncomeLog }},
	{name: "SavingsAccountBalance_log", numeric: func(f *BorrowerFeatures) *float64 { return &f.SavingsAccountBalanceLog }},
	{name: "CheckingAccountBalance_log", numeric: func(f *BorrowerFeatures) *float64 { return &f.CheckingAccountBalanceLog }},
	{name: "NetWorth_log", numeric: func(f *BorrowerFeatures) *float64 { return &f.NetWorthLog }},
	{name: "TotalAssets_log", numeric: func(f *BorrowerFeatures) *float64 { return &f.TotalAssetsLog }},
	{name: "TotalLiabilities_log", numeric: func(f *BorrowerFeatures) *float64 { return &f.TotalLiabilitiesLog }},
	{name: "MonthlyLoanPayment_log", numeric: func(f *BorrowerFeatures) *float64 { return &f.MonthlyLoanPaymentLog }},
	{name: "LoanAmount_log", numeric: func(f *BorrowerFeatures) *float64 { return &f.LoanAmountLog }},
	{name: "MonthlyDebtPayments_log", numeric: func(f *BorrowerFeatures) *float64 { return &f.MonthlyDebtPaymentsLog }},
	{name: "EmploymentStatus", text: func(f *BorrowerFeatures) *string { return &f.EmploymentStatus }},
	{name: "EducationLevel", text: func(f *BorrowerFeatures) *string { return &f.EducationLevel }},
	{name: "MaritalStatus", text: func(f *BorrowerFeatures) *string { return &f.MaritalStatus }},
	{name: "HomeOwnershipStatus", text: func(f *BorrowerFeatures) *string { return &f.HomeOwnershipStatus }},
	{name: "LoanPurpose", text: func(f *BorrowerFeatures) *string { return &f.LoanPurpose }},
}

// FeatureNames returns the model columns in training order.
func FeatureNames() []string {
	names := make([]string, len(featureFields))
	for i, ff := range featureFields {
		names[i] = ff.name
	}
	return names
}

// IsNumericFeature reports whether name is a numeric model column.
func IsNumericFeature(name string) bool {
	for _, ff := range featureFields {
		if ff.name == name {
			return ff.numeric != nil
		}
	}
	return false
}

// ParseBorrowerFeatures builds BorrowerFeatures from a decoded JSON object or
// form submission. Every model column must be present; numeric columns accept
// numbers or numeric strings. Unknown keys are ignored.
func ParseBorrowerFeatures(raw map[string]any) (BorrowerFeatures, error) {
	var f BorrowerFeatures
	for _, ff := range featureFields {
		v, ok := raw[ff.name]
		if !ok || v == nil {
			return BorrowerFeatures{}, valueobject.NewInvalidInputError(ff.name, "is required")
		}

		if ff.numeric != nil {
			n, err := toFloat(v)
			if err != nil {
				return BorrowerFeatures{}, valueobject.NewInvalidInputError(ff.name, err.Error())
			}
			*ff.numeric(&f) = n
			continue
		}

		s, ok := v.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return BorrowerFeatures{}, valueobject.NewInvalidInputError(ff.name, "must be a non-empty string")
		}
		*ff.text(&f) = strings.TrimSpace(s)
	}
	return f, nil
}

func toFloat(v any) (float64, error) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("must be numeric, got %q", x.String())
		}
		n = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("must be numeric, got %q", x)
		}
		n = parsed
	default:
		return 0, fmt.Errorf("must be numeric, got %T", v)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("must be finite")
	}
	return n, nil
}

// Values returns the features keyed by model column name.
func (f BorrowerFeatures) Values() map[string]any {
	out := make(map[string]any, len(featureFields))
	for _, ff := range featureFields {
		if ff.numeric != nil {
			out[ff.name] = *ff.numeric(&f)
		} else {
			out[ff.name] = *ff.text(&f)
		}
	}
	return out
}

// AnnualIncome undoes the log transform of AnnualIncome_log.
func (f BorrowerFeatures) AnnualIncome() float64 {
	return math.Exp(f.AnnualIncomeLog)
}

// MonthlyDebt undoes the log transform of MonthlyDebtPayments_log.
func (f BorrowerFeatures) MonthlyDebt() float64 {
	return math.Exp(f.MonthlyDebtPaymentsLog)
}

// CreditScoreValue truncates CreditScore to an integer.
func (f BorrowerFeatures) CreditScoreValue() int {
	return int(f.CreditScore)
}

// AssessmentInput combines the features with a model score into the input of
// the affordability calculation.
func (f BorrowerFeatures) AssessmentInput(riskScore float64) valueobject.AssessmentInput {
	return valueobject.AssessmentInput{
		RiskScore:           riskScore,
		AnnualIncome:        f.AnnualIncome(),
		ExistingMonthlyDebt: f.MonthlyDebt(),
		CreditScore:         f.CreditScoreValue(),
	}
}
