package reporting

import (
	"strings"

	"github.com/microsoft/toolcheck/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New()

// Issues returns the list items of a markdown response, in document order,
// skipping any item that is just a verdict marker. Models tend to report
// problems as bullet lists, so this is what the console summary shows.
func Issues(response string) []string {
	src := []byte(response)
	doc := markdown.Parser().Parse(text.NewReader(src))

	var issues []string

	//nolint:errcheck // the walker never returns an error
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindListItem {
			return ast.WalkContinue, nil
		}

		item := itemText(n, src)
		if item == "" || item == models.ValidMarker || item == models.InvalidMarker {
			return ast.WalkContinue, nil
		}

		issues = append(issues, item)
		return ast.WalkContinue, nil
	})

	return issues
}

// itemText joins the lines of the first text block of a list item. Nested
// lists are separate items and are not included.
func itemText(item ast.Node, src []byte) string {
	for child := item.FirstChild(); child != nil; child = child.NextSibling() {
		if child.Kind() != ast.KindTextBlock && child.Kind() != ast.KindParagraph {
			continue
		}

		lines := child.Lines()
		parts := make([]string, 0, lines.Len())
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			if line := strings.TrimSpace(string(seg.Value(src))); line != "" {
				parts = append(parts, line)
			}
		}
		return strings.Join(parts, " ")
	}
	return ""
}
