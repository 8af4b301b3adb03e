package weather

import (
	"context"
	"errors"
	"testing"
	"time"

	"sitechat/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingProvider struct{}

func (failingProvider) Forecast(context.Context, model.Location, int) ([]model.ForecastDay, error) {
	return nil, errors.New("upstream unavailable")
}

func fixedMock() *MockProvider {
	return &MockProvider{now: func() time.Time { return time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC) }}
}

func TestLocationFor(t *testing.T) {
	assert.Equal(t, "Chicago", LocationFor("P002").City)
	assert.Equal(t, "Miami", LocationFor("P005").City)
	assert.Equal(t, "New York", LocationFor("P999").City)
}

func TestForProject(t *testing.T) {
	s := NewService(fixedMock(), zap.NewNop())

	r, err := s.ForProject(context.Background(), model.Project{ID: "P004", Name: "Adam Project"})
	require.NoError(t, err)

	assert.Equal(t, "Weather forecast for Adam Project (Seattle)", r.Message)
	require.Len(t, r.Forecast.Days, 3)
	assert.Equal(t, "2025-06-10", r.Forecast.Days[0].Date)
	assert.Equal(t, "2025-06-12", r.Forecast.Days[2].Date)
	assert.Equal(t, "Light rain", r.Forecast.Days[2].Description)

	assert.Contains(t, r.HTML, "<h3>Weather Forecast for Seattle</h3>")
	assert.Contains(t, r.HTML, "72°F")
	assert.Contains(t, r.HTML, "Humidity: 65% | Wind: 8 mph")
}

func TestForProject_ProviderError(t *testing.T) {
	s := NewService(failingProvider{}, zap.NewNop())

	_, err := s.ForProject(context.Background(), model.Project{ID: "P001", Name: "Riverside Apartments"})
	assert.Error(t, err)
}

func TestMockProvider_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fixedMock().Forecast(ctx, defaultLocation, 3)
	assert.ErrorIs(t, err, context.Canceled)
}
