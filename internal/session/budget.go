package session

import "github.com/xxxsen/examforge/internal/config"

// Estimator approximates token cost for text and page images.
type Estimator struct {
	budget config.BudgetConfig
}

func NewEstimator(budget config.BudgetConfig) Estimator {
	def := config.DefaultBudget()
	if budget.CharsPerToken <= 0 {
		budget.CharsPerToken = def.CharsPerToken
	}
	if budget.ImageTokensPerPage < 0 {
		budget.ImageTokensPerPage = def.ImageTokensPerPage
	}
	return Estimator{budget: budget}
}

func (e Estimator) Text(s string) int {
	return len(s) / e.budget.CharsPerToken
}

func (e Estimator) Images(pages int) int {
	return pages * e.budget.ImageTokensPerPage
}

// Session is the registration-time estimate: aggregated text plus one image per page.
func (e Estimator) Session(text string, pages int) int {
	return e.Text(text) + e.Images(pages)
}

// Query is the search-time estimate including the query and the fixed prompt overhead.
func (e Estimator) Query(text string, pages int, query string) int {
	return e.Session(text, pages) + e.Text(query) + e.budget.PromptOverhead
}

func (e Estimator) OverSoft(tokens int) bool {
	return e.budget.SoftLimit > 0 && tokens > e.budget.SoftLimit
}

func (e Estimator) OverHard(tokens int) bool {
	return e.budget.HardLimit > 0 && tokens > e.budget.HardLimit
}

func (e Estimator) Budget() config.BudgetConfig {
	return e.budget
}
