package tui

import "strings"

func truncateText(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if len(text) <= width {
		return text
	}
	if width <= 3 {
		return text[:width]
	}
	return text[:width-3] + "..."
}

// formatDetail renders "label: text" with continuation lines indented under
// the text.
func formatDetail(label, text string, width int) string {
	if width <= len(label) {
		return label + text
	}
	lines := strings.Split(wrapText(text, width-len(label)), "\n")

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n")
			b.WriteString(strings.Repeat(" ", len(label)))
		} else {
			b.WriteString(label)
		}
		b.WriteString(line)
	}
	return b.String()
}

func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	var line strings.Builder
	for _, word := range words {
		if line.Len() > 0 && line.Len()+1+len(word) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	lines = append(lines, line.String())
	return strings.Join(lines, "\n")
}
