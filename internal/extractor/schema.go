package extractor

// FunctionBlock is one extracted function or method, ready to be annotated.
type FunctionBlock struct {
	RawText        string `json:"raw_text"`        // Span from the def keyword up to the next boundary
	NormalizedText string `json:"normalized_text"` // Signature + body, canonical indent, docstring removed
	Name           string `json:"name"`            // Identifier parsed from NormalizedText
	Ordinal        int    `json:"ordinal"`         // 1-based position among all extracted blocks
}
