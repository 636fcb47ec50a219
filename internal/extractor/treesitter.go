package extractor

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

const pythonFunctionQuery = `(function_definition) @func`

// TreeSitterExtractor segments Python source using the tree-sitter grammar.
// Blocks are reported in document order, nested definitions included, and
// anything from a top-level `if __name__ ...` guard onwards is ignored.
type TreeSitterExtractor struct{}

// Segment implements Extractor.
func (t *TreeSitterExtractor) Segment(document string) []FunctionBlock {
	src := []byte(document)

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil
	}
	defer tree.Close()
	root := tree.RootNode()
	guard := guardOffset(root, src)

	query, err := sitter.NewQuery([]byte(pythonFunctionQuery), python.GetLanguage())
	if err != nil {
		return nil
	}
	defer query.Close()
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, root)

	var blocks []FunctionBlock
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			if c.Node.StartByte() >= guard {
				continue
			}
			normalized := normalizeNode(c.Node, src)
			blocks = append(blocks, FunctionBlock{
				RawText:        c.Node.Content(src),
				NormalizedText: normalized,
				Name:           parseName(normalized),
			})
		}
	}
	return numberBlocks(blocks)
}

func guardOffset(root *sitter.Node, src []byte) uint32 {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child == nil || child.Type() != "if_statement" {
			continue
		}
		cond := child.ChildByFieldName("condition")
		if cond != nil && strings.Contains(cond.Content(src), "__name__") {
			return child.StartByte()
		}
	}
	return ^uint32(0)
}

// normalizeNode returns the definition dedented to column zero with its
// leading docstring statement removed.
func normalizeNode(node *sitter.Node, src []byte) string {
	start, end := node.StartByte(), node.EndByte()

	text := string(src[start:end])
	if doc := leadingDocstring(node); doc != nil {
		head := strings.TrimRight(string(src[start:doc.StartByte()]), " \t")
		tail := strings.TrimLeft(string(src[doc.EndByte():end]), " \t")
		if strings.HasSuffix(head, "\n") {
			tail = strings.TrimPrefix(tail, "\n")
		}
		text = head + tail
	}

	indent := strings.Repeat(" ", int(node.StartPoint().Column))
	lines := strings.Split(text, "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = strings.TrimPrefix(lines[i], indent)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func leadingDocstring(node *sitter.Node) *sitter.Node {
	body := node.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		stmt := body.NamedChild(i)
		if stmt.Type() == "comment" {
			continue
		}
		if stmt.Type() != "expression_statement" || stmt.NamedChildCount() == 0 {
			return nil
		}
		if stmt.NamedChild(0).Type() != "string" {
			return nil
		}
		return stmt
	}
	return nil
}
