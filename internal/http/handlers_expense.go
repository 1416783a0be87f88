package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/sindhu2707/expense-tracker/internal/core"
	"github.com/sindhu2707/expense-tracker/internal/export"
	"github.com/sindhu2707/expense-tracker/internal/log"
	"github.com/sindhu2707/expense-tracker/internal/services"
)

const msgExpenseNotFound = "Expense not found"

// handleListExpenses returns every expense newest first, or the filtered and
// sorted view when any filter parameter is given.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var (
		expenses []core.Expense
		err      error
	)
	query := r.URL.Query()
	if hasFilterQuery(query) {
		f, perr := ParseFilter(query, s.today())
		if perr != nil {
			BadRequestError(perr.Error()).Write(w)
			return
		}
		expenses, err = s.deps.Expenses.Query(r.Context(), userID, f)
	} else {
		expenses, err = s.deps.Expenses.List(r.Context(), userID)
	}
	if err != nil {
		writeServiceError(w, r, err, log.OpList, msgExpenseNotFound)
		return
	}
	NewJSONResponse().Body(newExpenseResponses(expenses)).Write(w)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		NotFoundError(msgExpenseNotFound).Write(w)
		return
	}

	e, err := s.deps.Expenses.Get(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, r, err, log.OpRead, msgExpenseNotFound)
		return
	}
	NewJSONResponse().Body(newExpenseResponse(e)).Write(w)
}

// readExpense decodes and converts the body shared by create and update.
func readExpense(w http.ResponseWriter, r *http.Request, userID int64) (core.Expense, bool) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(msgInvalidBody).Write(w)
		return core.Expense{}, false
	}
	if req.missingRequired() {
		BadRequestError(msgExpenseRequired).Write(w)
		return core.Expense{}, false
	}
	e, err := req.toExpense(userID)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return core.Expense{}, false
	}
	return e, true
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	e, ok := readExpense(w, r, userID)
	if !ok {
		return
	}

	saved, err := s.deps.Expenses.Create(r.Context(), e)
	if err != nil {
		writeServiceError(w, r, err, log.OpCreate, msgExpenseNotFound)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(newExpenseResponse(saved)).Write(w)
}

// handleUpdateExpense replaces every field of an owned expense.
func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		NotFoundError(msgExpenseNotFound).Write(w)
		return
	}
	e, ok := readExpense(w, r, userID)
	if !ok {
		return
	}
	e.ID = id

	saved, err := s.deps.Expenses.Update(r.Context(), e)
	if err != nil {
		writeServiceError(w, r, err, log.OpUpdate, msgExpenseNotFound)
		return
	}
	NewJSONResponse().Body(newExpenseResponse(saved)).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		NotFoundError(msgExpenseNotFound).Write(w)
		return
	}

	if err := s.deps.Expenses.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, r, err, log.OpDelete, msgExpenseNotFound)
		return
	}
	NewJSONResponse().Message("Expense deleted", "id", id).Write(w)
}

func (s *Server) handleBulkDeleteExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req bulkDeleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(services.ErrNoSelection.Error()).Write(w)
		return
	}

	if _, err := s.deps.Expenses.DeleteMany(r.Context(), userID, req.IDs); err != nil {
		writeServiceError(w, r, err, log.OpBulkDelete, msgExpenseNotFound)
		return
	}
	NewJSONResponse().
		Message(fmt.Sprintf("%d expenses deleted", len(req.IDs)), "ids", req.IDs).
		Write(w)
}

// handleExportExpenses sends the filtered set as a CSV attachment. An empty
// set gets a JSON notice instead of an empty file.
func (s *Server) handleExportExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	f, err := ParseFilter(r.URL.Query(), s.today())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	expenses, err := s.deps.Expenses.Query(r.Context(), userID, f)
	if err != nil {
		writeServiceError(w, r, err, log.OpExport, msgExpenseNotFound)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, expenses); err != nil {
		if errors.Is(err, export.ErrNothingToExport) {
			NewJSONResponse().Body(map[string]string{"notice": export.NothingToExportNotice}).Write(w)
			return
		}
		writeServiceError(w, r, err, log.OpExport, msgExpenseNotFound)
		return
	}

	log.FromContext(r.Context()).WithComponent(log.ComponentExpense).InfoContext(r.Context(), "Expenses exported",
		log.FieldOperation, log.OpExport,
		log.FieldCount, len(expenses))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(f.Period())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
