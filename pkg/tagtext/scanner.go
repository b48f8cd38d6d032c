// Package tagtext scans the flat tagged-text records used by term documents.
//
// The format looks like XML but is not: there are no attributes, no escaping
// and no awareness of nesting. A lookup always resolves to the first opening
// tag and the first matching closing tag that follows it.
package tagtext

import "strings"

// Span locates one tag pair inside a string. Offsets are byte indexes into
// the scanned text.
type Span struct {
	// Start is the index of the '<' of the opening tag.
	Start int
	// ContentStart is the first byte after the opening tag.
	ContentStart int
	// ContentEnd is the index of the '<' of the closing tag.
	ContentEnd int
	// End is the first byte after the closing tag.
	End int
}

// Open returns the opening tag literal for name.
func Open(name string) string {
	return "<" + name + ">"
}

// Close returns the closing tag literal for name.
func Close(name string) string {
	return "</" + name + ">"
}

// Wrap surrounds content with the tag pair for name.
func Wrap(name, content string) string {
	var b strings.Builder
	b.Grow(len(content) + 2*len(name) + 5)
	b.WriteString(Open(name))
	b.WriteString(content)
	b.WriteString(Close(name))
	return b.String()
}

// Find locates the first <name> in text and the first </name> after it.
func Find(text, name string) (Span, bool) {
	return FindFrom(text, name, 0)
}

// FindFrom behaves like Find but starts scanning at offset.
func FindFrom(text, name string, offset int) (Span, bool) {
	if offset < 0 || offset > len(text) {
		return Span{}, false
	}
	open := Open(name)
	start := strings.Index(text[offset:], open)
	if start < 0 {
		return Span{}, false
	}
	start += offset
	contentStart := start + len(open)

	closing := Close(name)
	end := strings.Index(text[contentStart:], closing)
	if end < 0 {
		return Span{}, false
	}
	contentEnd := contentStart + end

	return Span{
		Start:        start,
		ContentStart: contentStart,
		ContentEnd:   contentEnd,
		End:          contentEnd + len(closing),
	}, true
}

// Extract returns the text strictly between the first <name> and the first
// </name> after it. The boolean is false when either tag is missing; callers
// treat that as "field not present".
func Extract(text, name string) (string, bool) {
	span, ok := Find(text, name)
	if !ok {
		return "", false
	}
	return text[span.ContentStart:span.ContentEnd], true
}

// HasPrefixTag reports whether text starts with the opening tag for name and
// returns the offset just past it.
func HasPrefixTag(text, name string) (int, bool) {
	open := Open(name)
	if !strings.HasPrefix(text, open) {
		return 0, false
	}
	return len(open), true
}

// Lines splits a block on '\n' and drops empty chunks.
func Lines(block string) []string {
	parts := strings.Split(block, "\n")
	lines := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		lines = append(lines, part)
	}
	return lines
}

// Plain reports whether s can be stored as tag content unchanged. Content is
// never escaped, so angle brackets and line breaks are not allowed.
func Plain(s string) bool {
	return !strings.ContainsAny(s, "<>\r\n")
}
