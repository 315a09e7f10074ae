package ai

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type ManagerConfig struct {
	Timeout int
}

type Manager struct {
	searcher IGenerator
	cfg      ManagerConfig
}

func NewManager(searcher IGenerator, cfg ManagerConfig) *Manager {
	return &Manager{searcher: searcher, cfg: cfg}
}

// FindQuestions sends one multimodal request and returns the model's raw text.
func (m *Manager) FindQuestions(ctx context.Context, documentText, query string, images []Image) (string, error) {
	if m.searcher == nil {
		return "", ErrUnavailable
	}
	return m.generateText(ctx, m.searcher, BuildSearchPrompt(documentText, query), images)
}

func (m *Manager) generateText(ctx context.Context, gen IGenerator, prompt string, images []Image) (string, error) {
	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(m.cfg.Timeout)*time.Second)
		defer cancel()
	}
	resp, err := gen.Generate(ctx, prompt, images)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp)
	if text == "" {
		return "", fmt.Errorf("empty ai response")
	}
	return text, nil
}

func BuildSearchPrompt(documentText, query string) string {
	return fmt.Sprintf(`You are reviewing exam papers. The full extracted text of every page is below, and an image of every page is attached in the same order.
Use the images for diagrams, graphs and layout. Use the text for exact wording.

DOCUMENT CONTENT:
%s

TASK:
Find the questions related to: "%s".

RULES:
1. Asking, not answering: return a page only if it states the problem (an instruction such as "Calculate", "Show that", "Explain", "Find", or the data, equations or diagrams that define it). Skip pages that only give room to answer, such as "Question 3 continued" followed by blank lines, grids or ruled space.
2. Relevance: return only pages whose questions match "%s". Ignore syllabus lists, contents pages and headers that merely mention the topic.
3. Verifiable quote: copy the exact opening text of the question from the problem statement on that page. If you cannot quote it exactly, do not return the page.
4. One result per question: parts such as 4a, 4b and 4c belong to a single result.
5. Source file: take the file name from the marker "--- Page X of <filename> ---" that precedes the page. Never guess it.

Return a JSON array. Each element has:
- "page_number": the 1-indexed page number from the page marker.
- "source_filename": the file name from the page marker.
- "question_index": the question number exactly as printed.
- "description": the topic and what the question asks, e.g. "Q4: Differentiation - chain rule".
- "quote": the exact opening text of the question.

Example:
[
  {"page_number": 3, "source_filename": "paper_1.pdf", "question_index": "Q4", "description": "Differentiation - chain rule", "quote": "4. (a) Differentiate y = x^2 sin(x) with respect to x."}
]

Return only the JSON array, without markdown or code fences. If nothing matches, return [].
`, documentText, query, query)
}
