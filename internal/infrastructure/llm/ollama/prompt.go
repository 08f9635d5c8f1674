package ollama

import (
	"fmt"
	"strings"
)

const defaultSystemPrompt = `You are an AI assistant that analyzes documents and provides helpful summaries and explanations.
Use the provided context to answer the user's question accurately and comprehensively.
If the context doesn't contain relevant information, state that clearly.`

func systemPrompt(customPrompt string) string {
	if strings.TrimSpace(customPrompt) != "" {
		return customPrompt
	}
	return defaultSystemPrompt
}

func buildUserPrompt(query string, contextChunks []string) string {
	contextText := "No relevant context found."
	if len(contextChunks) > 0 {
		contextText = strings.Join(contextChunks, "\n\n")
	}

	return fmt.Sprintf(`Context from documents:
%s

Question: %s

Please provide a comprehensive answer based on the context above.`, contextText, query)
}
