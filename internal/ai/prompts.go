package ai

import _ "embed"

var (
	//go:embed prompts/interpret.txt
	promptInterpret string
	//go:embed prompts/analyze.txt
	promptAnalyze string
	//go:embed prompts/chat.txt
	promptChat string
)

// PromptTemplate returns the prompt template text and whether the name was recognized.
func PromptTemplate(name string) (string, bool) {
	switch name {
	case "interpret":
		return promptInterpret, true
	case "analyze":
		return promptAnalyze, true
	case "chat":
		return promptChat, true
	default:
		return promptInterpret, false
	}
}
