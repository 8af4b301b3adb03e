package project

import (
	"strings"

	"sitechat/internal/model"
	"sitechat/internal/repository"
)

type Service struct {
	repo *repository.ProjectRepository
}

func NewService(repo *repository.ProjectRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(projectID string) (model.Project, error) {
	return s.repo.Get(projectID)
}

// Accessible returns the projects among ids that exist, keyed by id.
// Unknown ids are skipped.
func (s *Service) Accessible(ids []string) map[string]model.Project {
	out := make(map[string]model.Project, len(ids))
	for _, id := range ids {
		if p, err := s.repo.Get(id); err == nil {
			out[id] = p
		}
	}
	return out
}

func (s *Service) Budget(projectID string) (model.Budget, error) {
	p, err := s.repo.Get(projectID)
	if err != nil {
		return model.Budget{}, err
	}
	return p.Budget, nil
}

func (s *Service) BudgetMetrics(projectID string) (model.BudgetMetrics, error) {
	b, err := s.Budget(projectID)
	if err != nil {
		return model.BudgetMetrics{}, err
	}
	return ComputeBudgetMetrics(b), nil
}

func ComputeBudgetMetrics(b model.Budget) model.BudgetMetrics {
	m := model.BudgetMetrics{IsOverBudget: b.Spent > b.Allocated}
	if b.Allocated > 0 {
		m.PercentageSpent = float64(b.Spent) / float64(b.Allocated) * 100
		m.PercentageRemaining = float64(b.Remaining) / float64(b.Allocated) * 100
	}
	return m
}

// FindMentioned returns the first project, in id order, whose name appears in
// the text (case-insensitive).
func (s *Service) FindMentioned(text string) (model.Project, bool) {
	lower := strings.ToLower(text)
	for _, p := range s.repo.List() {
		if strings.Contains(lower, strings.ToLower(p.Name)) {
			return p, true
		}
	}
	return model.Project{}, false
}
