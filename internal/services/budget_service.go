package services

import (
	"context"
	"fmt"

	"fintrack/internal/core"
)

// BudgetStore is the data access the budget service needs.
type BudgetStore interface {
	UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	ListBudgets(ctx context.Context, year, month int) ([]core.Budget, error)
	DeleteBudget(ctx context.Context, id string) error
	CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
	ListGoals(ctx context.Context) ([]core.Goal, error)
	UpdateGoalSaved(ctx context.Context, id string, savedCents int64) error
	DeleteGoal(ctx context.Context, id string) error
	MonthSummary(ctx context.Context, year, month int) (core.MonthSummary, error)
}

// BudgetStatus pairs a budget with the month's actual spend in its
// category.
type BudgetStatus struct {
	Budget     core.Budget
	SpentCents int64
}

// Over reports whether the category's spend exceeded its limit.
func (s BudgetStatus) Over() bool {
	return s.SpentCents > s.Budget.LimitCents
}

// BudgetService manages per-category monthly limits and saving goals.
type BudgetService struct {
	store BudgetStore
}

func NewBudgetService(store BudgetStore) *BudgetService {
	return &BudgetService{store: store}
}

// SetBudget validates and upserts a category limit for a month. A second
// call for the same category and month replaces the limit.
func (s *BudgetService) SetBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	return s.store.UpsertBudget(ctx, b)
}

// BudgetStatuses returns each budget of the month with the actual expense
// total of its category.
func (s *BudgetService) BudgetStatuses(ctx context.Context, year, month int) ([]BudgetStatus, error) {
	budgets, err := s.store.ListBudgets(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	if len(budgets) == 0 {
		return nil, nil
	}

	summary, err := s.store.MonthSummary(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("load month summary: %w", err)
	}
	spent := make(map[string]int64, len(summary.ByCategory))
	for _, c := range summary.ByCategory {
		spent[c.Name] = c.Amount.Cents
	}

	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, BudgetStatus{Budget: b, SpentCents: spent[b.Category]})
	}
	return out, nil
}

func (s *BudgetService) DeleteBudget(ctx context.Context, id string) error {
	return s.store.DeleteBudget(ctx, id)
}

// CreateGoal validates and stores a saving goal.
func (s *BudgetService) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	return s.store.CreateGoal(ctx, g)
}

func (s *BudgetService) ListGoals(ctx context.Context) ([]core.Goal, error) {
	return s.store.ListGoals(ctx)
}

// UpdateGoalSaved sets the amount saved toward a goal so far.
func (s *BudgetService) UpdateGoalSaved(ctx context.Context, id string, savedCents int64) error {
	if savedCents < 0 {
		return fmt.Errorf("saved amount must not be negative")
	}
	return s.store.UpdateGoalSaved(ctx, id, savedCents)
}

func (s *BudgetService) DeleteGoal(ctx context.Context, id string) error {
	return s.store.DeleteGoal(ctx, id)
}
