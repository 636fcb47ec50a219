package annotator

import (
	"strings"
	"testing"

	"docsmith/internal/config"
	"docsmith/internal/extractor"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt("def f():\n    pass")
	want := "# Python 3.7\n \ndef f():\n    pass\n    \n" +
		"# An elaborate, high quality docstring for the above function in google format:\n\"\"\""
	assert.Equal(t, want, got)
}

func TestMaxTokens(t *testing.T) {
	assert.Equal(t, 4000, MaxTokens(""))
	assert.Equal(t, 3995, MaxTokens("def f(x):"), "9 characters leave 3995.5, floored")
	assert.Equal(t, 3000, MaxTokens(strings.Repeat("x", 2000)))
	assert.Equal(t, 3999, MaxTokens("ππ"), "characters, not bytes")
}

func TestBuildRequest(t *testing.T) {
	block := extractor.FunctionBlock{NormalizedText: "def f(x):", Name: "f", Ordinal: 1}
	s := config.Sampling{Temperature: 0.1, TopP: 0.9, FrequencyPenalty: 0.5, PresencePenalty: 0.2}

	req := BuildRequest(block, s, "gpt-3.5-turbo-instruct")
	assert.Equal(t, BuildPrompt("def f(x):"), req.Prompt)
	assert.Equal(t, "gpt-3.5-turbo-instruct", req.Model)
	assert.Equal(t, 0.1, req.Temperature)
	assert.Equal(t, 0.9, req.TopP)
	assert.Equal(t, 0.5, req.FrequencyPenalty)
	assert.Equal(t, 0.2, req.PresencePenalty)
	assert.Equal(t, 3995, req.MaxTokens)
	assert.Equal(t, []string{"#", `"""`}, req.Stop)

	req.Stop[0] = "mutated"
	assert.Equal(t, "#", stopSequences[0])
}
