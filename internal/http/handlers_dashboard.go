package http

import (
	"net/http"
	"strings"

	"github.com/sindhu2707/expense-tracker/internal/currency"
	"github.com/sindhu2707/expense-tracker/internal/log"
	"github.com/sindhu2707/expense-tracker/internal/receipt"
	"github.com/sindhu2707/expense-tracker/internal/services"
)

// handleDashboard returns every dashboard figure for the filter in the query.
// ?rollover adds last month's underspend to the caps and ?currency picks the
// display currency.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	today := s.today()

	f, err := ParseFilter(query, today)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	d, err := s.deps.Dashboard.Build(r.Context(), userID, services.DashboardQuery{
		Filter:   f,
		Rollover: queryBool(query, "rollover"),
		Currency: strings.TrimSpace(query.Get("currency")),
		Today:    today,
	})
	if err != nil {
		writeServiceError(w, r, err, log.OpRead, "Dashboard not found")
		return
	}
	NewJSONResponse().Body(newDashboardResponse(d)).Write(w)
}

// handleParseReceipt suggests expense fields from recognized receipt text.
// Fields that could not be read are left out.
func (s *Server) handleParseReceipt(w http.ResponseWriter, r *http.Request) {
	var req receiptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(msgInvalidBody).Write(w)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		BadRequestError("text is required").Write(w)
		return
	}

	x := receipt.Extract(req.Text)
	if !x.Found() {
		log.FromContext(r.Context()).WithComponent(log.ComponentExpense).InfoContext(r.Context(), "Nothing recognized on receipt",
			"text_length", len(req.Text))
	}
	NewJSONResponse().Body(newReceiptResponse(x)).Write(w)
}

func handleCurrencies(w http.ResponseWriter, _ *http.Request) {
	all := currency.All()
	out := make([]currencyResponse, 0, len(all))
	for _, info := range all {
		out = append(out, currencyResponse{Code: info.Code, Symbol: info.Symbol, PerUSD: info.PerUSD})
	}
	NewJSONResponse().Body(out).Write(w)
}
