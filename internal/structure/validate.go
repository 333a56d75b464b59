package structure

import (
	"bytes"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// validateDescription parses a converted description through a Markdown
// AST and rejects output that is empty or carries no recognizable prose,
// code, or list content — the signal that the conversion picked up theme
// chrome instead of documentation.
func validateDescription(content []byte) bool {
	if len(bytes.TrimSpace(content)) == 0 {
		return false
	}

	doc := markdown.Parse(content, parser.New())

	hasContent := false
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		switch node.(type) {
		case *ast.Text, *ast.Paragraph, *ast.List, *ast.Table, *ast.CodeBlock, *ast.Heading:
			hasContent = true
			return ast.Terminate
		}
		return ast.GoToNext
	})

	return hasContent
}
