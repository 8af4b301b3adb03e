package repository

import (
	"errors"
	"sort"

	"sitechat/internal/model"

	"go.uber.org/zap"
)

var ErrProjectNotFound = errors.New("project not found")

// ProjectRepository serves the static project records. It is read-only after
// construction and safe for concurrent use.
type ProjectRepository struct {
	byID   map[string]model.Project
	order  []string
	logger *zap.Logger
}

func NewProjectRepository(logger *zap.Logger) (*ProjectRepository, error) {
	seed, err := loadSeed(seedYAML)
	if err != nil {
		return nil, err
	}
	return newProjectRepository(seed.Projects, logger), nil
}

func newProjectRepository(projects []model.Project, logger *zap.Logger) *ProjectRepository {
	r := &ProjectRepository{
		byID:   make(map[string]model.Project, len(projects)),
		logger: logger,
	}
	for _, p := range projects {
		r.byID[p.ID] = p
		r.order = append(r.order, p.ID)
	}
	sort.Strings(r.order)

	logger.Info("Project records loaded", zap.Int("count", len(r.order)))
	return r
}

func (r *ProjectRepository) Get(id string) (model.Project, error) {
	p, ok := r.byID[id]
	if !ok {
		return model.Project{}, ErrProjectNotFound
	}
	return p, nil
}

// List returns every project ordered by id.
func (r *ProjectRepository) List() []model.Project {
	out := make([]model.Project, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}
