package extractor

import "strings"

// HeuristicExtractor splits source text on the def keyword. It is not a
// parser: nested functions become their own blocks and any triple-quoted
// literal in a body is treated as a docstring.
type HeuristicExtractor struct{}

// Segment implements Extractor.
func (h *HeuristicExtractor) Segment(document string) []FunctionBlock {
	parts := strings.Split(document, defKeyword)
	if len(parts) < 2 {
		return nil
	}
	segments := parts[1:]

	// Trailing script code under the entry-point guard is not a function body.
	last := len(segments) - 1
	segments[last], _, _ = strings.Cut(segments[last], mainGuard)

	blocks := make([]FunctionBlock, 0, len(segments))
	for _, seg := range segments {
		normalized := normalizeSegment(seg)
		blocks = append(blocks, FunctionBlock{
			RawText:        defKeyword + seg,
			NormalizedText: normalized,
			Name:           parseName(normalized),
		})
	}
	return numberBlocks(blocks)
}

func normalizeSegment(seg string) string {
	text := defKeyword + strings.TrimSpace(strings.ReplaceAll(seg, "        ", "    "))
	if strings.Contains(text, docQuote) {
		text = stripDocstring(text)
	}
	return text
}

// stripDocstring keeps the pieces outside triple quotes, i.e. the even
// positions of a split on the delimiter.
func stripDocstring(text string) string {
	pieces := strings.Split(text, docQuote)
	var sb strings.Builder
	for i := 0; i < len(pieces); i += 2 {
		sb.WriteString(pieces[i])
	}
	lines := strings.Split(sb.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.ReplaceAll(strings.TrimSpace(strings.Join(lines, "\n")), "\n\n", "\n")
}
