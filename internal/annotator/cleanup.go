package annotator

import "strings"

// CleanCompletion turns raw completion text into a docstring body. Models
// sometimes echo the signature ("def foo(x):") or a call form ("foo(x): ...")
// before the actual description; both echoes are cut off.
func CleanCompletion(text, name string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "def ") || strings.HasPrefix(text, "async def ") {
		_, rest, found := strings.Cut(text, ":")
		if !found {
			return ""
		}
		text = strings.TrimSpace(rest)
	}

	if name != "" && strings.HasPrefix(text, name+"(") {
		_, rest, _ := strings.Cut(text, ")")
		rest = strings.TrimSpace(rest)
		if strings.HasPrefix(rest, "->") {
			_, rest, _ = strings.Cut(rest, ":")
		}
		text = strings.TrimPrefix(strings.TrimSpace(rest), ":")
	}

	return strings.TrimSpace(text)
}
