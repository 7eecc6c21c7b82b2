package chat

import (
	"strings"
	"unicode/utf8"
)

// SplitLines splits an export on the same boundaries as Python's str.splitlines: \r\n, \n, \r,
// \v, \f, \x1c, \x1d, \x1e, U+0085, U+2028 and U+2029. Empty lines are kept, a trailing
// terminator does not yield a final empty line. Invalid UTF-8 is replaced so every line is valid text.
func SplitLines(content string) []string {
	content = strings.ToValidUTF8(content, "\uFFFD")
	var lines []string
	start := 0
	for i, r := range content {
		if !isLineBoundary(r) {
			continue
		}
		if r == '\n' && i > 0 && content[i-1] == '\r' {
			start = i + 1
			continue
		}
		lines = append(lines, content[start:i])
		start = i + utf8.RuneLen(r)
	}
	if start < len(content) {
		lines = append(lines, content[start:])
	}
	return lines
}

func isLineBoundary(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// ParseFile turns one export into messages. Lines no grammar accepts are dropped.
// The line index used for message ids counts every line, blank ones included.
func ParseFile(sourceFile, content string) []Message {
	lines := SplitLines(content)
	messages := make([]Message, 0, len(lines))
	for i, line := range lines {
		m, ok := MatchLine(line)
		if !ok {
			continue
		}
		messages = append(messages, Message{
			MessageID:  MessageID(sourceFile, i),
			Date:       NormalizeDate(m.Date),
			Time:       m.Time,
			Sender:     m.Sender,
			Text:       m.Text,
			SourceFile: sourceFile,
			WordCount:  len(strings.Fields(m.Text)),
		})
	}
	return messages
}

// LooksLikeExport reports whether at least two of the first twenty non-empty lines carry an export timestamp.
func LooksLikeExport(content string) bool {
	const (
		window    = 20
		threshold = 2
	)

	seen, matches := 0, 0
	for _, line := range SplitLines(content) {
		line = normalizeLine(line)
		if line == "" {
			continue
		}
		seen++
		if exportLinePattern.MatchString(line) {
			matches++
			if matches >= threshold {
				return true
			}
		}
		if seen >= window {
			break
		}
	}
	return false
}
