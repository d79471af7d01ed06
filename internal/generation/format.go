package generation

import (
	"strings"

	"github.com/JaimeStill/caduceus/internal/queries"
)

const categoryHeader = "# Category"

// Normalize tidies a generated markdown answer: headers and the first item
// of each list are preceded by a blank line, and a Category section naming
// category is prepended when the model omitted it.
func Normalize(category queries.Category, text string) string {
	lines := strings.Split(strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n")), "\n")
	out := make([]string, 0, len(lines)+8)

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		header := strings.HasPrefix(trimmed, "#")
		listStart := strings.HasPrefix(trimmed, "-") && (i == 0 || !strings.HasPrefix(strings.TrimSpace(lines[i-1]), "-"))

		if (header || listStart) && len(out) > 0 && out[len(out)-1] != "" {
			out = append(out, "")
		}
		out = append(out, line)
	}

	answer := strings.Join(out, "\n")
	if !strings.Contains(answer, categoryHeader) {
		answer = categoryHeader + "\n" + category.Label() + "\n\n" + answer
	}
	return answer
}
