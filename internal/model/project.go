package model

// Milestone statuses used by the seed data and the charts.
const (
	MilestoneCompleted  = "Completed"
	MilestoneInProgress = "In Progress"
	MilestoneNotStarted = "Not Started"
)

type Budget struct {
	Allocated int64 `json:"allocated" yaml:"allocated"`
	Spent     int64 `json:"spent" yaml:"spent"`
	Remaining int64 `json:"remaining" yaml:"remaining"`
}

type Issue struct {
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description" yaml:"description"`
	Status      string `json:"status" yaml:"status"` // Open / In Progress / Resolved
	Date        string `json:"date" yaml:"date"`     // YYYY-MM-DD
}

type Resources struct {
	Workers   int      `json:"workers" yaml:"workers"`
	Equipment []string `json:"equipment" yaml:"equipment"`
}

type Milestone struct {
	Name   string `json:"name" yaml:"name"`
	Status string `json:"status" yaml:"status"`
	Date   string `json:"date" yaml:"date"` // target date, YYYY-MM-DD
}

type Project struct {
	ID         string      `json:"id" yaml:"id"`
	Name       string      `json:"name" yaml:"name"`
	Status     string      `json:"status" yaml:"status"`
	Completion int         `json:"completion" yaml:"completion"`
	Timeline   string      `json:"timeline" yaml:"timeline"`
	Budget     Budget      `json:"budget" yaml:"budget"`
	Issues     []Issue     `json:"issues" yaml:"issues"`
	Resources  Resources   `json:"resources" yaml:"resources"`
	Milestones []Milestone `json:"milestones" yaml:"milestones"`
}

// BudgetMetrics is derived from Budget; Allocated == 0 yields zero percentages.
type BudgetMetrics struct {
	PercentageSpent     float64 `json:"percentage_spent"`
	PercentageRemaining float64 `json:"percentage_remaining"`
	IsOverBudget        bool    `json:"is_over_budget"`
}
