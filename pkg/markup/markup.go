// Package markup implements the small inline formatting used in bot
// messages: **bold**, *italics*, `code` and line breaks. Input is always
// treated as untrusted text and escaped before any markup is produced.
package markup

import (
	"html"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	boldRe   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe = regexp.MustCompile(`\*(.*?)\*`)
	codeRe   = regexp.MustCompile("`(.*?)`")
)

// EscapeHTML renders text literally inside an HTML document.
func EscapeHTML(text string) string {
	return html.EscapeString(text)
}

// HTML escapes text and converts the inline marks to HTML.
func HTML(text string) string {
	s := EscapeHTML(text)
	s = boldRe.ReplaceAllString(s, "<strong>$1</strong>")
	s = italicRe.ReplaceAllString(s, "<em>$1</em>")
	s = codeRe.ReplaceAllString(s, "<code>$1</code>")
	return strings.ReplaceAll(s, "\n", "<br>")
}

// Plain drops the inline marks and keeps the text.
func Plain(text string) string {
	s := boldRe.ReplaceAllString(text, "$1")
	s = italicRe.ReplaceAllString(s, "$1")
	return codeRe.ReplaceAllString(s, "$1")
}

// Styles controls how inline marks look in a terminal.
type Styles struct {
	Bold   lipgloss.Style
	Italic lipgloss.Style
	Code   lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Bold:   lipgloss.NewStyle().Bold(true),
		Italic: lipgloss.NewStyle().Italic(true),
		Code:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
}

// Terminal styles the inline marks for a terminal. Control characters other
// than newlines and tabs are stripped so message text cannot drive the
// terminal.
func (st Styles) Terminal(text string) string {
	s := StripControl(text)
	s = replaceStyled(boldRe, s, st.Bold)
	s = replaceStyled(italicRe, s, st.Italic)
	return replaceStyled(codeRe, s, st.Code)
}

func replaceStyled(re *regexp.Regexp, s string, style lipgloss.Style) string {
	return re.ReplaceAllStringFunc(s, func(m string) string {
		sub := re.FindStringSubmatch(m)
		if len(sub) < 2 {
			return m
		}
		return style.Render(sub[1])
	})
}

// StripControl removes escape sequences and other control characters,
// keeping newlines and tabs.
func StripControl(text string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r < 0x20 || r == 0x7f:
			return -1
		case r >= 0x80 && r < 0xa0:
			return -1
		}
		return r
	}, text)
}
