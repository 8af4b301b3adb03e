package weather

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"sitechat/internal/model"
	"sitechat/pkg/logger"

	"go.uber.org/zap"
)

// Provider returns a daily forecast for a location.
type Provider interface {
	Forecast(ctx context.Context, loc model.Location, days int) ([]model.ForecastDay, error)
}

var defaultLocation = model.Location{City: "New York", Lat: 40.7128, Lon: -74.0060}

// Site locations by project id; unknown projects fall back to New York.
var locations = map[string]model.Location{
	"P001": defaultLocation,
	"P002": {City: "Chicago", Lat: 41.8781, Lon: -87.6298},
	"P003": {City: "Los Angeles", Lat: 34.0522, Lon: -118.2437},
	"P004": {City: "Seattle", Lat: 47.6062, Lon: -122.3321},
	"P005": {City: "Miami", Lat: 25.7617, Lon: -80.1918},
}

func LocationFor(projectID string) model.Location {
	if loc, ok := locations[projectID]; ok {
		return loc
	}
	return defaultLocation
}

const forecastDays = 3

var fragment = template.Must(template.New("forecast").Parse(`<div class="weather-forecast">
    <h3>Weather Forecast for {{.Location.City}}</h3>
    <div class="forecast-days">
{{- range .Days}}
        <div class="forecast-day">
            <div class="date">{{.Date}}</div>
            <div class="temp">{{.TempF}}°F</div>
            <div class="description">{{.Description}}</div>
            <div class="details">Humidity: {{.Humidity}}% | Wind: {{.WindMph}} mph</div>
        </div>
{{- end}}
    </div>
</div>
`))

// Report is the forecast for a project site plus its HTML rendering.
type Report struct {
	Message  string
	HTML     string
	Forecast model.Forecast
}

type Service struct {
	provider Provider
	logger   *zap.Logger
}

func NewService(provider Provider, logger *zap.Logger) *Service {
	return &Service{provider: provider, logger: logger}
}

func (s *Service) ForProject(ctx context.Context, p model.Project) (Report, error) {
	loc := LocationFor(p.ID)

	days, err := s.provider.Forecast(ctx, loc, forecastDays)
	if err != nil {
		logger.WithTrace(ctx, s.logger).Error("Failed to fetch forecast",
			zap.String("project_id", p.ID),
			zap.String("city", loc.City),
			zap.Error(err),
		)
		return Report{}, err
	}
	if len(days) > forecastDays {
		days = days[:forecastDays]
	}

	forecast := model.Forecast{Location: loc, Days: days}
	var buf bytes.Buffer
	if err := fragment.Execute(&buf, forecast); err != nil {
		return Report{}, fmt.Errorf("render forecast: %w", err)
	}

	return Report{
		Message:  fmt.Sprintf("Weather forecast for %s (%s)", p.Name, loc.City),
		HTML:     buf.String(),
		Forecast: forecast,
	}, nil
}

// MockProvider serves a fixed three-day forecast dated from today.
type MockProvider struct {
	now func() time.Time
}

func NewMockProvider() *MockProvider {
	return &MockProvider{now: time.Now}
}

var mockDays = []model.ForecastDay{
	{TempF: 72, Humidity: 65, Description: "Partly cloudy", Icon: "02d", WindMph: 8},
	{TempF: 75, Humidity: 60, Description: "Sunny", Icon: "01d", WindMph: 5},
	{TempF: 68, Humidity: 70, Description: "Light rain", Icon: "10d", WindMph: 10},
}

func (m *MockProvider) Forecast(ctx context.Context, _ model.Location, days int) ([]model.ForecastDay, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	today := m.now()
	n := min(days, len(mockDays))
	out := make([]model.ForecastDay, n)
	for i := 0; i < n; i++ {
		out[i] = mockDays[i]
		out[i].Date = today.AddDate(0, 0, i).Format("2006-01-02")
	}
	return out, nil
}
