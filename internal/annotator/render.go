package annotator

import (
	"io"
	"strings"

	"docsmith/internal/extractor"
)

const (
	docQuote      = `"""`
	defaultIndent = "    "
)

var separator = strings.Repeat("-", 80)

// Render writes the block with doc inserted as its docstring. With
// includeSource unset only the docstring itself is written.
func Render(w io.Writer, block extractor.FunctionBlock, doc string, includeSource bool) error {
	signature, body := splitSignature(block.NormalizedText)
	indent := bodyIndent(body)

	var sb strings.Builder
	if includeSource && signature != "" {
		sb.WriteString(signature + "\n")
	}
	sb.WriteString(indent + docQuote + doc + "\n")
	sb.WriteString(indent + docQuote + "\n")
	if includeSource && body != "" {
		sb.WriteString(body + "\n")
	}
	sb.WriteString("\n" + separator + "\n\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// splitSignature separates the (possibly multi-line) signature from the
// body. A statement sharing the signature line is moved onto a body line of
// its own so the docstring can go in front of it.
func splitSignature(text string) (string, string) {
	if text == "" {
		return "", ""
	}
	lines := strings.Split(text, "\n")
	li, ci := signatureEnd(lines)
	if li < 0 {
		return lines[0], strings.Join(lines[1:], "\n")
	}

	line := lines[li]
	signature := strings.Join(lines[:li+1], "\n")
	body := lines[li+1:]
	if rest := strings.TrimSpace(line[ci+1:]); rest != "" && !strings.HasPrefix(rest, "#") {
		signature = strings.Join(append(lines[:li:li], line[:ci+1]), "\n")
		lead := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		body = append([]string{lead + defaultIndent + rest}, body...)
	}
	return signature, strings.Join(body, "\n")
}

// signatureEnd locates the colon closing the def header: the first colon at
// bracket depth zero outside string literals and comments.
func signatureEnd(lines []string) (int, int) {
	depth := 0
	for i, line := range lines {
		var quote byte
		for j := 0; j < len(line); j++ {
			c := line[j]
			switch {
			case quote != 0:
				if c == '\\' {
					j++
				} else if c == quote {
					quote = 0
				}
			case c == '\'' || c == '"':
				quote = c
			case c == '#':
				j = len(line)
			case c == '(' || c == '[' || c == '{':
				depth++
			case c == ')' || c == ']' || c == '}':
				depth--
			case c == ':' && depth <= 0:
				return i, j
			}
		}
	}
	return -1, -1
}

func bodyIndent(body string) string {
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if indent == "" {
			break
		}
		return indent
	}
	return defaultIndent
}
