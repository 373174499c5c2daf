package prompt

import (
	"fmt"
	"strings"

	"ragkb/internal/domain"
)

// NoContextPlaceholder replaces the context block when retrieval came back
// empty, so the model is told explicitly instead of being handed a blank.
const NoContextPlaceholder = "No relevant content found in the knowledge base."

const instructions = `Answer the question using only the context above.
If the context does not contain enough information, say so explicitly instead of guessing.`

// Build renders the retrieved chunks as a bulleted context block followed by
// the question and fixed task instructions. Output is whitespace-normalized:
// trailing spaces stripped per line, leading and trailing blank lines trimmed.
func Build(query string, results []domain.SearchResult) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	if len(results) == 0 {
		b.WriteString(NoContextPlaceholder + "\n")
	} else {
		for _, r := range results {
			fmt.Fprintf(&b, "- %s\n", r.Chunk.Text)
		}
	}
	fmt.Fprintf(&b, "\nQuestion: %s\n\n%s", query, instructions)
	return normalize(b.String())
}

func normalize(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}
