package chat

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"sitechat/internal/model"
	"sitechat/internal/util"
)

type Intent string

const (
	IntentSelectProject Intent = "select_project"
	IntentReport        Intent = "report"
	IntentChart         Intent = "chart"
	IntentWeather       Intent = "weather"
	IntentAddNote       Intent = "add_note"
	IntentViewNotes     Intent = "view_notes"
	IntentHelp          Intent = "help"
	IntentNoProject     Intent = "no_project"
	IntentStatus        Intent = "status"
	IntentBudget        Intent = "budget"
	IntentIssues        Intent = "issues"
	IntentMilestones    Intent = "milestones"
	IntentResources     Intent = "resources"
	IntentUnknown       Intent = "unknown"
)

// Action codes understood by the web layer.
const (
	CodeShowProjectSelector = "SHOW_PROJECT_SELECTOR"
	CodeGenerateReport      = "GENERATE_REPORT"
	CodeShowBudgetChart     = "SHOW_BUDGET_CHART"
	CodeCheckWeather        = "CHECK_WEATHER"
	CodeAddNote             = "ADD_NOTE"
	CodeViewNotes           = "VIEW_NOTES"
)

const (
	askNoteText     = "What would you like the note to say?"
	selectFirst     = "Please select a project first by typing 'select project'."
	defaultResponse = "I'm not sure how to answer that. Try asking about project status, budget, issues, milestones, or resources."
)

const helpText = `You can ask about:
- Project Status: "What's the status of this project?"
- Budget Information: "Show me the budget details"
- Current Issues: "Are there any issues?"
- Milestones: "What are the milestones?"
- Resources: "What resources are assigned?"

Additional features:
- Generate a PDF report: "Generate a project report"
- View budget charts: "Show me the budget chart"
- Check weather: "What's the weather forecast for the site?"
- Add notes: "Add a note saying [your note text]"
- View notes: "Show me all notes"

First, select a project by typing 'select project'.
`

// Response is the classifier's answer. Code is set for action intents and
// empty for text answers; Text holds the answer, guidance or prompt.
type Response struct {
	Intent       Intent
	Code         string
	Text         string
	Note         string
	NeedsProject bool
}

// Wire renders the response in the single-string form used by the chat
// endpoint: the action code, "ADD_NOTE:<text>", or the text answer.
func (r Response) Wire() string {
	switch {
	case r.Code == CodeAddNote:
		return CodeAddNote + ":" + r.Note
	case r.Code != "":
		return r.Code
	default:
		return r.Text
	}
}

// ProjectSource is the read side of the project records the classifier needs.
type ProjectSource interface {
	Get(projectID string) (model.Project, error)
	FindMentioned(text string) (model.Project, bool)
}

var (
	reportPattern      = regexp.MustCompile(`(generate|create|make|produce).*report`)
	chartPattern       = regexp.MustCompile(`(show|display|create|generate|visualize).*?(chart|graph|budget.*?chart|visualization)`)
	weatherPattern     = regexp.MustCompile(`(check|show|get|what.*?is|what'?s|how.*?is|how'?s).*?(weather|forecast|temperature|rain|precipitation)`)
	addNotePattern     = regexp.MustCompile(`(add|create|make|write).*?note`)
	noteContentPattern = regexp.MustCompile(`(?i)(saying|that says|with content|with text|:)\s*["“”]?(.*?)["“”]?$`)
	viewNotesPattern   = regexp.MustCompile(`(view|show|get|read|list).*?notes`)
)

var (
	budgetWords    = []string{"budget", "cost", "money", "financial", "spend", "spending"}
	issueWords     = []string{"issue", "problem", "trouble", "challenge", "difficulty"}
	milestoneWords = []string{"milestone", "progress", "phase", "stage", "timeline", "schedule"}
	resourceWords  = []string{"resource", "worker", "staff", "people", "team", "equipment", "tool", "machine"}
	helpWords      = []string{"help", "guide", "assist", "instruction", "command"}
)

// actionRule resolves to an action code. guidance is returned instead when
// no project is selected.
type actionRule struct {
	intent   Intent
	matches  func(lower string) bool
	guidance string
	resolve  func(message string) Response
}

// topicRule answers from the selected project's record.
type topicRule struct {
	intent  Intent
	matches func(lower string) bool
	answer  func(p model.Project) string
}

// Classifier maps a free-text message to a Response. It holds no mutable
// state and is safe for concurrent use.
type Classifier struct {
	projects ProjectSource
	actions  []actionRule
	topics   []topicRule
	now      func() time.Time
}

func NewClassifier(projects ProjectSource) *Classifier {
	c := &Classifier{
		projects: projects,
		now:      time.Now,
	}
	c.actions = []actionRule{
		{
			intent:  IntentSelectProject,
			matches: func(m string) bool { return containsAny(m, "select", "choose") && strings.Contains(m, "project") },
			resolve: code(IntentSelectProject, CodeShowProjectSelector),
		},
		{
			intent:   IntentReport,
			matches:  reportPattern.MatchString,
			guidance: "Please select a project first before generating a report.",
			resolve:  code(IntentReport, CodeGenerateReport),
		},
		{
			intent:   IntentChart,
			matches:  chartPattern.MatchString,
			guidance: "Please select a project first before generating charts.",
			resolve:  code(IntentChart, CodeShowBudgetChart),
		},
		{
			intent:   IntentWeather,
			matches:  weatherPattern.MatchString,
			guidance: "Please select a project first before checking weather.",
			resolve:  code(IntentWeather, CodeCheckWeather),
		},
		{
			intent:   IntentAddNote,
			matches:  addNotePattern.MatchString,
			guidance: "Please select a project first before adding notes.",
			resolve:  resolveAddNote,
		},
		{
			intent:   IntentViewNotes,
			matches:  viewNotesPattern.MatchString,
			guidance: "Please select a project first before viewing notes.",
			resolve:  code(IntentViewNotes, CodeViewNotes),
		},
	}
	c.topics = []topicRule{
		{
			intent:  IntentStatus,
			matches: func(m string) bool { return strings.Contains(m, "status") },
			answer:  statusAnswer,
		},
		{intent: IntentBudget, matches: keywords(budgetWords), answer: budgetAnswer},
		{intent: IntentIssues, matches: keywords(issueWords), answer: issuesAnswer},
		{intent: IntentMilestones, matches: keywords(milestoneWords), answer: c.milestonesAnswer},
		{intent: IntentResources, matches: keywords(resourceWords), answer: resourcesAnswer},
	}
	return c
}

// Classify applies the rules in order; the first match wins. An empty
// projectID, or one that names no project, means no project is selected.
func (c *Classifier) Classify(message, projectID string) Response {
	lower := strings.ToLower(message)

	var project model.Project
	selected := false
	if projectID != "" {
		if p, err := c.projects.Get(projectID); err == nil {
			project, selected = p, true
		}
	}

	for _, rule := range c.actions {
		if !rule.matches(lower) {
			continue
		}
		if rule.guidance != "" && !selected {
			return Response{Intent: rule.intent, Text: rule.guidance, NeedsProject: true}
		}
		return rule.resolve(message)
	}

	if !selected {
		if p, ok := c.projects.FindMentioned(lower); ok {
			return Response{
				Intent:       IntentNoProject,
				Text:         fmt.Sprintf("I found the %s. Please select it first by typing 'select project'.", p.Name),
				NeedsProject: true,
			}
		}
		return Response{Intent: IntentNoProject, Text: selectFirst, NeedsProject: true}
	}

	for _, rule := range c.topics {
		if rule.matches(lower) {
			return Response{Intent: rule.intent, Text: rule.answer(project)}
		}
	}

	if containsAny(lower, helpWords...) {
		return Response{Intent: IntentHelp, Text: helpText}
	}
	return Response{Intent: IntentUnknown, Text: defaultResponse}
}

func code(intent Intent, c string) func(string) Response {
	return func(string) Response {
		return Response{Intent: intent, Code: c}
	}
}

// resolveAddNote extracts the note body after "saying", "that says",
// "with content", "with text" or ":", keeping the user's casing.
func resolveAddNote(message string) Response {
	m := noteContentPattern.FindStringSubmatch(strings.TrimSpace(message))
	if m == nil {
		return Response{Intent: IntentAddNote, Text: askNoteText}
	}
	text := strings.TrimSpace(strings.TrimLeft(m[2], ": "))
	if text == "" {
		return Response{Intent: IntentAddNote, Text: askNoteText}
	}
	return Response{Intent: IntentAddNote, Code: CodeAddNote, Note: text}
}

func statusAnswer(p model.Project) string {
	return fmt.Sprintf("Project \"%s\" is currently %s with %d%% completion. The timeline is %s.",
		p.Name, p.Status, p.Completion, p.Timeline)
}

func budgetAnswer(p model.Project) string {
	return fmt.Sprintf("Budget for %s: Allocated: %s, Spent: %s, Remaining: %s",
		p.Name,
		util.FormatMoney(p.Budget.Allocated),
		util.FormatMoney(p.Budget.Spent),
		util.FormatMoney(p.Budget.Remaining),
	)
}

func issuesAnswer(p model.Project) string {
	if len(p.Issues) == 0 {
		return fmt.Sprintf("No issues reported for project %s.", p.Name)
	}
	lines := make([]string, 0, len(p.Issues))
	for _, i := range p.Issues {
		lines = append(lines, fmt.Sprintf("- %s (%s) - Reported on %s", i.Description, i.Status, i.Date))
	}
	return fmt.Sprintf("Issues for %s:\n%s", p.Name, strings.Join(lines, "\n"))
}

// milestonesAnswer lists milestones and flags unfinished ones whose target
// date has passed.
func (c *Classifier) milestonesAnswer(p model.Project) string {
	if len(p.Milestones) == 0 {
		return fmt.Sprintf("No milestones recorded for project %s.", p.Name)
	}
	now := c.now()
	lines := make([]string, 0, len(p.Milestones))
	for _, m := range p.Milestones {
		line := fmt.Sprintf("- %s: %s (Target: %s)", m.Name, m.Status, m.Date)
		if m.Status != model.MilestoneCompleted {
			if late, err := util.IsPastDue(m.Date, now); err == nil && late {
				line += " - past due"
			}
		}
		lines = append(lines, line)
	}
	return fmt.Sprintf("Milestones for %s:\n%s", p.Name, strings.Join(lines, "\n"))
}

func resourcesAnswer(p model.Project) string {
	equipment := "None"
	if len(p.Resources.Equipment) > 0 {
		equipment = strings.Join(p.Resources.Equipment, ", ")
	}
	return fmt.Sprintf("Resources for %s:\n- Workers: %s\n- Equipment: %s",
		p.Name, util.FormatNumber(int64(p.Resources.Workers)), equipment)
}

func keywords(words []string) func(string) bool {
	return func(m string) bool { return containsAny(m, words...) }
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
