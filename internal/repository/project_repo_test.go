package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProjectRepository_SeedData(t *testing.T) {
	repo, err := NewProjectRepository(zap.NewNop())
	require.NoError(t, err)

	projects := repo.List()
	require.Len(t, projects, 5)
	assert.Equal(t, "P001", projects[0].ID)
	assert.Equal(t, "P005", projects[4].ID)

	p, err := repo.Get("P001")
	require.NoError(t, err)
	assert.Equal(t, "Riverside Apartments", p.Name)
	assert.Equal(t, int64(3500000), p.Budget.Allocated)
	assert.Equal(t, int64(1225000), p.Budget.Remaining)
	assert.Len(t, p.Issues, 2)
	assert.Equal(t, []string{"Excavator", "Crane", "Concrete Mixer"}, p.Resources.Equipment)
	assert.Equal(t, "Plumbing & Electrical", p.Milestones[2].Name)
	assert.Equal(t, "2025-08-15", p.Milestones[2].Date)

	empty, err := repo.Get("P003")
	require.NoError(t, err)
	assert.Empty(t, empty.Issues)
	assert.Empty(t, empty.Resources.Equipment)
}

func TestProjectRepository_GetUnknown(t *testing.T) {
	repo, err := NewProjectRepository(zap.NewNop())
	require.NoError(t, err)

	_, err = repo.Get("P999")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestUserRepository_SeedData(t *testing.T) {
	repo, err := NewUserRepository(zap.NewNop())
	require.NoError(t, err)

	users := repo.List()
	require.Len(t, users, 3)
	assert.Equal(t, "U001", users[0].ID)

	u, err := repo.Get("U002")
	require.NoError(t, err)
	assert.Equal(t, []string{"P003", "P005"}, u.ProjectAccess)

	_, err = repo.Get("nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLoadSeed_InvalidYAML(t *testing.T) {
	_, err := loadSeed([]byte("users: [unterminated"))
	assert.Error(t, err)
}
