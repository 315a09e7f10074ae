package model

type SearchResult struct {
	PageNumber    int     `json:"page_number"`
	SourceFile    string  `json:"source_filename"`
	QuestionIndex string  `json:"question_index"`
	Description   string  `json:"description"`
	Quote         string  `json:"quote"`
	RenderRef     *string `json:"image_url"`
}
