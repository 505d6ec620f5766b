package rendering

import (
	"html"
	"strings"
)

var lineBreaks = strings.NewReplacer("\r\n", "<br>", "\n", "<br>", "\r", "<br>")

// escape escapes user-entered text for insertion into HTML.
func escape(text string) string {
	if text == "" {
		return ""
	}
	return html.EscapeString(text)
}

// escapeMultiline escapes text and turns its line breaks into <br> tags.
func escapeMultiline(text string) string {
	return lineBreaks.Replace(escape(strings.TrimSpace(text)))
}

// displayName returns the name to show in a heading.
func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Your Name"
	}
	return escape(strings.TrimSpace(name))
}
