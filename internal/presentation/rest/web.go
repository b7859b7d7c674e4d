package rest

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lendwise/loanrisk/internal/application/dto"
	"github.com/lendwise/loanrisk/internal/domain/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type formField struct {
	Name    string
	Value   string
	Numeric bool
}

type formPage struct {
	CustomerID string
	Error      string
	Fields     []formField
}

type resultPage struct {
	CustomerID       string
	RiskTier         string
	RiskCode         string
	Description      string
	Color            string
	Decision         string
	DecisionMessage  string
	Timestamp        string
	RiskScore        float64
	MaxLoan          float64
	MonthlyCapacity  float64
	EstimatedPayment float64
	BaseRate         float64
	AdjustedRate     float64
	AnnualIncome     float64
	CreditScore      int
}

// WebHandler serves the HTML assessment form.
type WebHandler struct {
	assessor Assessor
	logger   *slog.Logger
}

// NewWebHandler creates the HTML front-end handler.
func NewWebHandler(assessor Assessor, logger *slog.Logger) *WebHandler {
	return &WebHandler{assessor: assessor, logger: logger}
}

// Form handles GET /.
func (h *WebHandler) Form(w http.ResponseWriter, _ *http.Request) {
	h.render(w, http.StatusOK, "index.html", newFormPage("", nil, ""))
}

// Assess handles POST /assess, a form submission of every model feature.
func (h *WebHandler) Assess(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, "index.html", newFormPage("", nil, "Could not read the form: "+err.Error()))
		return
	}

	customerID := strings.TrimSpace(r.PostForm.Get("customer_id"))
	features := make(map[string]any, len(model.FeatureNames()))
	for _, name := range model.FeatureNames() {
		if values, ok := r.PostForm[name]; ok && len(values) > 0 {
			features[name] = values[0]
		}
	}

	resp, err := h.assessor.Execute(r.Context(), dto.AssessRequest{CustomerID: customerID, Features: features})
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("form assessment failed", "status", status, "error", err)
		}
		h.render(w, status, "index.html", newFormPage(customerID, features, err.Error()))
		return
	}

	h.render(w, http.StatusOK, "result.html", newResultPage(resp))
}

func (h *WebHandler) render(w http.ResponseWriter, status int, name string, data any) {
	var buf strings.Builder
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("failed to render page", "template", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String())) //nolint:errcheck
}

func newFormPage(customerID string, submitted map[string]any, errMsg string) formPage {
	names := model.FeatureNames()
	page := formPage{
		CustomerID: customerID,
		Error:      errMsg,
		Fields:     make([]formField, 0, len(names)),
	}
	for _, name := range names {
		value, _ := submitted[name].(string)
		page.Fields = append(page.Fields, formField{
			Name:    name,
			Value:   value,
			Numeric: model.IsNumericFeature(name),
		})
	}
	return page
}

func newResultPage(resp dto.AssessmentResponse) resultPage {
	return resultPage{
		CustomerID:       resp.CustomerID,
		RiskScore:        resp.RiskAssessment.RiskScore,
		RiskTier:         resp.RiskAssessment.RiskTier,
		RiskCode:         resp.RiskAssessment.RiskTierCode,
		Description:      resp.RiskAssessment.Description,
		Color:            resp.RiskAssessment.Color,
		Decision:         resp.LendingTerms.ApprovalDecision,
		DecisionMessage:  resp.LendingTerms.DecisionMessage,
		MaxLoan:          resp.LoanRecommendation.MaxApprovedAmount,
		MonthlyCapacity:  resp.LoanRecommendation.MonthlyPaymentCapacity,
		EstimatedPayment: resp.LoanRecommendation.EstimatedMonthlyPayment,
		BaseRate:         resp.LendingTerms.BaseInterestRate,
		AdjustedRate:     resp.LendingTerms.RiskAdjustedRate,
		AnnualIncome:     resp.Metadata.AnnualIncome,
		CreditScore:      resp.Metadata.CreditScore,
		Timestamp:        resp.Metadata.PredictionTimestamp.Format(time.DateTime),
	}
}
