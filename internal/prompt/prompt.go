// Package prompt builds the deterministic grounded-answer prompt sent to
// the generation provider. The same question and passages always produce
// byte-identical output, in caller-supplied passage order.
package prompt

import (
	"fmt"
	"strings"
)

// Passage is a retrieved excerpt supplied as grounding for the answer.
type Passage struct {
	Title   string
	Speaker string
	Text    string
}

// Delimiter separates passages in the prompt body.
const Delimiter = "\n---\n"

// SystemInstruction constrains the generator to the supplied passages.
const SystemInstruction = `You answer questions using only the talk passages provided in the user message. ` +
	`Quote or paraphrase only from those passages, and cite every passage you draw on by its title and speaker. ` +
	`If the passages do not contain enough information to answer the question, say so plainly and decline to answer. ` +
	`Never answer from outside the provided text.`

// Build renders the user prompt: the numbered passages in input order,
// followed by the question.
func Build(question string, passages []Passage) string {
	var sb strings.Builder

	sb.WriteString("Here are the talk passages to answer from:\n\n")
	for i, p := range passages {
		if i > 0 {
			sb.WriteString(Delimiter)
		}
		fmt.Fprintf(&sb, "Passage %d: %q by %s\n", i+1, p.Title, p.Speaker)
		sb.WriteString(p.Text)
	}

	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(question)
	return sb.String()
}
