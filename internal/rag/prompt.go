package rag

import (
	"fmt"
	"strings"
)

// labels each chunk with its 1-based position and title
func buildContext(sources []Source) string {
	parts := make([]string, 0, len(sources))

	for i, src := range sources {
		title := src.Title
		if title == "" {
			title = "Document"
		}

		parts = append(parts, fmt.Sprintf("Source [%d] (From: %s):\n%s", i+1, title, src.Text))
	}

	return strings.Join(parts, "\n\n")
}

func buildPrompt(query, context string) string {
	var builder strings.Builder

	builder.WriteString("You are a helpful assistant. Answer the question using ONLY the context below.\n")
	builder.WriteString("If the context does not contain the answer, reply exactly: \"")
	builder.WriteString(RefusalText)
	builder.WriteString("\"\n\n")

	builder.WriteString("Context:\n")
	builder.WriteString(context)
	builder.WriteString("\n\n")

	builder.WriteString("Question:\n")
	builder.WriteString(query)
	builder.WriteString("\n\n")

	builder.WriteString("Answer grounded in the context:\n")

	return builder.String()
}
