package model

import (
	"fmt"
	"time"
)

const FailedSessionID = "error_creating_session"

type PageRecord struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
	RenderRef  string `json:"render_ref"`
	Scanned    bool   `json:"scanned"`
}

type FileRecord struct {
	FileID       string       `json:"file_id"`
	OriginalName string       `json:"original_name"`
	StorageKey   string       `json:"filename"`
	StoragePath  string       `json:"-"`
	Pages        []PageRecord `json:"-"`
}

func (f *FileRecord) PageCount() int {
	return len(f.Pages)
}

// HasPage reports whether pageNumber (1-indexed) lies in the file's page range.
func (f *FileRecord) HasPage(pageNumber int) bool {
	return pageNumber >= 1 && pageNumber <= len(f.Pages)
}

// PageMap maps 1-indexed page numbers to render references.
func (f *FileRecord) PageMap() map[int]string {
	out := make(map[int]string, len(f.Pages))
	for _, p := range f.Pages {
		out[p.PageNumber] = p.RenderRef
	}
	return out
}

type DocumentSession struct {
	SessionID      string
	Files          []*FileRecord
	AggregatedText string
	CreatedAt      time.Time
}

func (s *DocumentSession) TotalPages() int {
	total := 0
	for _, f := range s.Files {
		total += f.PageCount()
	}
	return total
}

// RenderRef is the locator of a page rendering. pageIndex is zero-indexed.
func RenderRef(fileID string, pageIndex int) string {
	return fmt.Sprintf("/thumbnail/%s/%d", fileID, pageIndex)
}

func PageMarker(pageNumber int, originalName string) string {
	return fmt.Sprintf("\n--- Page %d of %s ---\n", pageNumber, originalName)
}

func DocumentMarker(originalName string) string {
	return fmt.Sprintf("\n=== Document: %s ===\n", originalName)
}

func ScannedPageText(pageNumber int) string {
	return fmt.Sprintf("\n[WARNING: Page %d contains no extractable text - it may be an image or scanned document. The AI cannot read this page.]\n", pageNumber)
}
