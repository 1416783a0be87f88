package services

import (
	"context"
	"strings"

	"github.com/sindhu2707/expense-tracker/internal/core"
	"github.com/sindhu2707/expense-tracker/internal/log"
	"github.com/sindhu2707/expense-tracker/internal/storage"
)

// GoalService manages savings goals. Progress is derived from the saved
// amount the user enters; expenses never move it.
type GoalService struct {
	repo storage.Goals
}

func NewGoalService(repo storage.Goals) *GoalService {
	return &GoalService{repo: repo}
}

// List returns the user's goals, newest first.
func (s *GoalService) List(ctx context.Context, userID int64) ([]core.Goal, error) {
	return s.repo.ListGoals(ctx, userID)
}

func (s *GoalService) Create(ctx context.Context, g core.Goal) (core.Goal, error) {
	g.Name = strings.TrimSpace(g.Name)
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	saved, err := s.repo.CreateGoal(ctx, g)
	if err != nil {
		return core.Goal{}, err
	}
	log.FromContext(ctx).WithComponent(log.ComponentGoal).InfoContext(ctx, "Goal created",
		log.FieldOperation, log.OpCreate,
		log.FieldUserID, g.UserID)
	return saved, nil
}

// Update replaces name, amounts and deadline of an owned goal.
func (s *GoalService) Update(ctx context.Context, g core.Goal) (core.Goal, error) {
	g.Name = strings.TrimSpace(g.Name)
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	return s.repo.UpdateGoal(ctx, g)
}

func (s *GoalService) Delete(ctx context.Context, userID, id int64) error {
	return s.repo.DeleteGoal(ctx, userID, id)
}
