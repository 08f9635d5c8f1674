// Package disabled holds the null-object generator used when no language
// model endpoint is configured. Query responses degrade to a fixed message
// while still carrying the retrieved chunks.
package disabled

import "context"

const unavailableMessage = "LLM service is not configured. Retrieved context chunks are shown below."

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (*Generator) Generate(context.Context, string, []string, string) (string, error) {
	return unavailableMessage, nil
}
