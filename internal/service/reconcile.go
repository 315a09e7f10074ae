package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xxxsen/common/logutil"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"go.uber.org/zap"

	"github.com/xxxsen/examforge/internal/model"
)

var fenceMarker = regexp.MustCompile("```json|```")

// ParseError reports model output that is not a JSON array of objects. Raw is
// the unmodified output.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model output: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type rawResult struct {
	PageNumber     looseInt    `json:"page_number"`
	Page           looseInt    `json:"page"`
	SourceFilename looseString `json:"source_filename"`
	QuestionIndex  looseString `json:"question_index"`
	Description    looseString `json:"description"`
	Quote          looseString `json:"quote"`
}

func (r rawResult) pageNumber() int {
	if r.PageNumber.ok && r.PageNumber.v != 0 {
		return r.PageNumber.v
	}
	return r.Page.v
}

// looseInt accepts a JSON number or a numeric string. Anything else decodes to zero.
type looseInt struct {
	v  int
	ok bool
}

func (l *looseInt) UnmarshalJSON(data []byte) error {
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch t := v.(type) {
	case json.Number:
		n = t
	case string:
		n = json.Number(strings.TrimSpace(t))
	default:
		return nil
	}
	if i, err := n.Int64(); err == nil {
		l.v, l.ok = int(i), true
		return nil
	}
	if f, err := n.Float64(); err == nil && f == float64(int(f)) {
		l.v, l.ok = int(f), true
	}
	return nil
}

// looseString accepts strings, numbers and booleans.
type looseString string

func (l *looseString) UnmarshalJSON(data []byte) error {
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch t := v.(type) {
	case string:
		*l = looseString(t)
	case json.Number:
		*l = looseString(t.String())
	case bool:
		*l = looseString(strconv.FormatBool(t))
	}
	return nil
}

// StripFences returns the content of the first fenced code block in raw, or
// raw with any stray fence markers removed when it has none.
func StripFences(raw string) string {
	src := []byte(raw)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	var (
		buf   bytes.Buffer
		found bool
	)
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		block, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		lines := block.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		found = true
		return ast.WalkStop, nil
	})
	if found {
		return strings.TrimSpace(buf.String())
	}
	return strings.TrimSpace(fenceMarker.ReplaceAllString(raw, ""))
}

func decodeResults(raw string) ([]rawResult, error) {
	clean := StripFences(raw)
	var items []rawResult
	if err := json.Unmarshal([]byte(clean), &items); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	if items == nil {
		return nil, &ParseError{Raw: raw, Err: fmt.Errorf("expected a JSON array, got %q", clean)}
	}
	return items, nil
}

// ResolveFile picks the file a result belongs to: the first file whose original
// name equals name, else the first file in upload order. exact reports which
// rule applied. It returns nil only when files is empty.
func ResolveFile(files []*model.FileRecord, name string) (file *model.FileRecord, exact bool) {
	if name != "" {
		for _, f := range files {
			if f.OriginalName == name {
				return f, true
			}
		}
	}
	if len(files) == 0 {
		return nil, false
	}
	return files[0], false
}

// Reconcile decodes raw model output and maps every record onto the session's
// page index. Output order equals input order; nothing is dropped or merged.
func Reconcile(ctx context.Context, raw string, sess *model.DocumentSession) ([]model.SearchResult, error) {
	items, err := decodeResults(raw)
	if err != nil {
		return nil, err
	}
	var files []*model.FileRecord
	if sess != nil {
		files = sess.Files
	}
	logger := logutil.GetLogger(ctx)
	out := make([]model.SearchResult, 0, len(items))
	for _, item := range items {
		res := model.SearchResult{
			PageNumber:    item.pageNumber(),
			SourceFile:    string(item.SourceFilename),
			QuestionIndex: string(item.QuestionIndex),
			Description:   string(item.Description),
			Quote:         string(item.Quote),
		}
		file, exact := ResolveFile(files, res.SourceFile)
		if file == nil {
			out = append(out, res)
			continue
		}
		if !exact {
			logger.Warn("result file not matched, using first file",
				zap.String("source_filename", res.SourceFile),
				zap.String("fallback", file.OriginalName))
		}
		res.SourceFile = file.OriginalName
		if file.HasPage(res.PageNumber) {
			ref := model.RenderRef(file.FileID, res.PageNumber-1)
			res.RenderRef = &ref
		}
		out = append(out, res)
	}
	return out, nil
}
