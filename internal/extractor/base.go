package extractor

import (
	"fmt"
	"strings"
)

const (
	defKeyword = "def "
	mainGuard  = "if __name__"
	docQuote   = `"""`
)

// Extractor segments a source document into function blocks.
// Implementations never fail on malformed input; they return whatever blocks
// they could recover, possibly with empty fields.
type Extractor interface {
	Segment(document string) []FunctionBlock
}

// New creates an extractor of the given kind ("heuristic" or "tree-sitter").
func New(kind string) (Extractor, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "heuristic":
		return &HeuristicExtractor{}, nil
	case "tree-sitter", "treesitter":
		return &TreeSitterExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported parser: %s", kind)
	}
}

// parseName takes the text before the first "(" and returns the token that
// follows the def keyword. Default values containing "(" or the keyword
// confuse it; that is a known limitation.
func parseName(normalized string) string {
	head, _, _ := strings.Cut(normalized, "(")
	_, name, found := strings.Cut(head, defKeyword)
	if !found {
		return ""
	}
	return name
}

func numberBlocks(blocks []FunctionBlock) []FunctionBlock {
	for i := range blocks {
		blocks[i].Ordinal = i + 1
	}
	return blocks
}
