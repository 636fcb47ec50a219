package annotator

import (
	"math"
	"unicode/utf8"

	"docsmith/internal/completion"
	"docsmith/internal/config"
	"docsmith/internal/extractor"
)

const (
	promptHeader      = "# Python 3.7\n \n"
	promptInstruction = "\n    \n# An elaborate, high quality docstring for the above function in google format:\n\"\"\""

	tokenBudget = 4000
)

// stopSequences halt generation at the next comment or docstring delimiter.
var stopSequences = []string{"#", `"""`}

// BuildPrompt wraps a normalized function in the docstring instruction.
func BuildPrompt(normalized string) string {
	return promptHeader + normalized + promptInstruction
}

// MaxTokens reserves the completion budget left after the prompt, assuming
// roughly two characters per token.
func MaxTokens(normalized string) int {
	return int(math.Floor(tokenBudget - float64(utf8.RuneCountInString(normalized))/2))
}

// BuildRequest derives the completion request for one block.
func BuildRequest(block extractor.FunctionBlock, s config.Sampling, model string) completion.Request {
	return completion.Request{
		Prompt:           BuildPrompt(block.NormalizedText),
		Model:            model,
		Temperature:      s.Temperature,
		TopP:             s.TopP,
		FrequencyPenalty: s.FrequencyPenalty,
		PresencePenalty:  s.PresencePenalty,
		MaxTokens:        MaxTokens(block.NormalizedText),
		Stop:             append([]string(nil), stopSequences...),
	}
}
