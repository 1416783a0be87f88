package http

import (
	"net/http"
	"strings"

	"github.com/sindhu2707/expense-tracker/internal/core"
	"github.com/sindhu2707/expense-tracker/internal/log"
)

const msgGoalNotFound = "Goal not found"

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	goals, err := s.deps.Goals.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, log.OpList, msgGoalNotFound)
		return
	}
	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, newGoalResponse(g))
	}
	NewJSONResponse().Body(out).Write(w)
}

func readGoal(w http.ResponseWriter, r *http.Request, userID int64) (core.Goal, bool) {
	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(msgInvalidBody).Write(w)
		return core.Goal{}, false
	}
	if strings.TrimSpace(req.Name) == "" || !req.TargetAmount.present() {
		BadRequestError(msgGoalRequired).Write(w)
		return core.Goal{}, false
	}
	g, err := req.toGoal(userID)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return core.Goal{}, false
	}
	return g, true
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	g, ok := readGoal(w, r, userID)
	if !ok {
		return
	}

	saved, err := s.deps.Goals.Create(r.Context(), g)
	if err != nil {
		writeServiceError(w, r, err, log.OpCreate, msgGoalNotFound)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(newGoalResponse(saved)).Write(w)
}

// handleUpdateGoal replaces name, amounts and deadline of an owned goal.
func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		NotFoundError(msgGoalNotFound).Write(w)
		return
	}
	g, ok := readGoal(w, r, userID)
	if !ok {
		return
	}
	g.ID = id

	saved, err := s.deps.Goals.Update(r.Context(), g)
	if err != nil {
		writeServiceError(w, r, err, log.OpUpdate, msgGoalNotFound)
		return
	}
	NewJSONResponse().Body(newGoalResponse(saved)).Write(w)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		NotFoundError(msgGoalNotFound).Write(w)
		return
	}
	if err := s.deps.Goals.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, r, err, log.OpDelete, msgGoalNotFound)
		return
	}
	NewJSONResponse().Message("Goal deleted", "id", id).Write(w)
}
