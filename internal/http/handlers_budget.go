package http

import (
	"net/http"
	"strings"

	"github.com/sindhu2707/expense-tracker/internal/core"
	"github.com/sindhu2707/expense-tracker/internal/log"
)

const msgBudgetNotFound = "Budget not found"

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	budgets, err := s.deps.Budgets.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, log.OpList, msgBudgetNotFound)
		return
	}
	out := make([]budgetResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, newBudgetResponse(b))
	}
	NewJSONResponse().Body(out).Write(w)
}

// handleUpsertBudget saves the cap for (category, month): 201 when a new row
// is created, 200 when an existing one is updated.
func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(msgInvalidBody).Write(w)
		return
	}
	if strings.TrimSpace(req.Category) == "" || !req.Amount.set || strings.TrimSpace(req.Month) == "" {
		BadRequestError(msgBudgetRequired).Write(w)
		return
	}
	b, err := req.toBudget(userID)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	saved, created, err := s.deps.Budgets.Upsert(r.Context(), b)
	if err != nil {
		writeServiceError(w, r, err, log.OpUpsert, msgBudgetNotFound)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	NewJSONResponse().Status(status).Body(newBudgetResponse(saved)).Write(w)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		NotFoundError(msgBudgetNotFound).Write(w)
		return
	}
	if err := s.deps.Budgets.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, r, err, log.OpDelete, msgBudgetNotFound)
		return
	}
	NewJSONResponse().Message("Budget deleted", "id", id).Write(w)
}

// handleEffectiveBudgets reports the caps in force for ?month (default the
// current month), with last month's underspend added when ?rollover is set.
func (s *Server) handleEffectiveBudgets(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()

	month := s.today().MonthKey()
	if v := strings.TrimSpace(query.Get(queryMonth)); v != "" {
		parsed, err := core.ParseMonthKey(v)
		if err != nil {
			BadRequestError(err.Error()).Write(w)
			return
		}
		month = parsed
	}

	eb, err := s.deps.Budgets.Effective(r.Context(), userID, month, queryBool(query, "rollover"))
	if err != nil {
		writeServiceError(w, r, err, log.OpRead, msgBudgetNotFound)
		return
	}
	NewJSONResponse().Body(newEffectiveBudgetsResponse(eb)).Write(w)
}
