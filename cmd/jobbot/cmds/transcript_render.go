package cmds

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/go-go-golems/jobbot/pkg/chat"
	"github.com/go-go-golems/jobbot/pkg/markup"
	"github.com/go-go-golems/jobbot/pkg/persistence/transcriptstore"
	"github.com/pkg/errors"
)

const resetMarker = "--- conversation reset ---"

func entryTime(e transcriptstore.Entry) time.Time {
	return time.UnixMilli(e.CreatedAtMs)
}

func entryButtons(e transcriptstore.Entry) (labels []string, notice string) {
	if e.SlotPicker {
		for _, s := range e.Slots {
			labels = append(labels, s.Display)
		}
		if len(labels) == 0 {
			notice = chat.NoSlotsNotice
		}
		return labels, notice
	}
	return e.Actions, ""
}

// renderText writes the transcript as plain lines.
func renderText(w io.Writer, entries []transcriptstore.Entry) error {
	var b strings.Builder
	for _, e := range entries {
		ts := entryTime(e).Format("2006-01-02 15:04:05")
		switch e.Role {
		case transcriptstore.RoleClear:
			fmt.Fprintf(&b, "%s %s\n", ts, resetMarker)
			continue
		case transcriptstore.RoleUser:
			fmt.Fprintf(&b, "%s You: %s\n", ts, markup.StripControl(e.Text))
		case transcriptstore.RoleError:
			fmt.Fprintf(&b, "%s ! %s\n", ts, markup.StripControl(e.Text))
		default:
			fmt.Fprintf(&b, "%s JobBot: %s\n", ts, markup.StripControl(markup.Plain(e.Text)))
		}
		labels, notice := entryButtons(e)
		if notice != "" {
			fmt.Fprintf(&b, "    (%s)\n", notice)
		}
		for _, l := range labels {
			fmt.Fprintf(&b, "    [%s]\n", markup.StripControl(l))
		}
	}
	_, err := io.WriteString(w, b.String())
	return errors.Wrap(err, "write transcript")
}

// renderMarkdown writes the transcript as a markdown document, used for the
// styled terminal view.
func renderMarkdown(w io.Writer, sessionID string, entries []transcriptstore.Entry) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Transcript %s\n\n", sessionID)
	for _, e := range entries {
		ts := entryTime(e).Format("15:04")
		switch e.Role {
		case transcriptstore.RoleClear:
			b.WriteString("---\n\n")
			continue
		case transcriptstore.RoleUser:
			fmt.Fprintf(&b, "**You** _%s_\n\n> %s\n\n", ts, strings.ReplaceAll(markup.StripControl(e.Text), "\n", "\n> "))
		case transcriptstore.RoleError:
			fmt.Fprintf(&b, "**Error** _%s_\n\n%s\n\n", ts, markup.StripControl(e.Text))
		default:
			fmt.Fprintf(&b, "**JobBot** _%s_\n\n%s\n\n", ts, markup.StripControl(e.Text))
		}
		labels, notice := entryButtons(e)
		if notice != "" {
			fmt.Fprintf(&b, "_%s_\n\n", notice)
		}
		for _, l := range labels {
			fmt.Fprintf(&b, "- `%s`\n", markup.StripControl(l))
		}
		if len(labels) > 0 {
			b.WriteString("\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return errors.Wrap(err, "write transcript")
}

type htmlEntry struct {
	Role    string
	Time    string
	Body    template.HTML
	Buttons []string
	Notice  string
	Reset   bool
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>JobBot transcript {{ .SessionID }}</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; }
.message { margin: 0.75rem 0; padding: 0.5rem 0.75rem; border-radius: 0.5rem; }
.user { background: #e8f0fe; }
.bot { background: #f1f3f4; }
.error { background: #fce8e6; color: #a50e0e; }
.time { color: #5f6368; font-size: 0.8rem; }
.button { display: inline-block; border: 1px solid #1a73e8; border-radius: 1rem; padding: 0.1rem 0.6rem; margin: 0.2rem; }
.notice { font-style: italic; color: #5f6368; }
</style>
</head>
<body>
<h1>Transcript {{ .SessionID }}</h1>
{{- range .Entries }}
{{- if .Reset }}
<hr>
{{- else }}
<div class="message {{ .Role }}">
<div class="time">{{ .Time }}</div>
<div class="body">{{ .Body }}</div>
{{- if .Notice }}
<div class="notice">{{ .Notice }}</div>
{{- end }}
{{- range .Buttons }}
<span class="button">{{ . }}</span>
{{- end }}
</div>
{{- end }}
{{- end }}
</body>
</html>
`

var transcriptHTML = template.Must(template.New("transcript").Parse(htmlTemplate))

// renderHTML writes a standalone HTML page. Bot text gets the inline marks;
// everything else is escaped literally.
func renderHTML(w io.Writer, sessionID string, entries []transcriptstore.Entry) error {
	rows := make([]htmlEntry, 0, len(entries))
	for _, e := range entries {
		if e.Role == transcriptstore.RoleClear {
			rows = append(rows, htmlEntry{Reset: true})
			continue
		}
		row := htmlEntry{Role: e.Role, Time: entryTime(e).Format("2006-01-02 15:04")}
		if e.Role == transcriptstore.RoleBot {
			row.Body = template.HTML(markup.HTML(e.Text))
		} else {
			row.Body = template.HTML(markup.EscapeHTML(e.Text))
		}
		row.Buttons, row.Notice = entryButtons(e)
		rows = append(rows, row)
	}
	err := transcriptHTML.Execute(w, struct {
		SessionID string
		Entries   []htmlEntry
	}{SessionID: sessionID, Entries: rows})
	return errors.Wrap(err, "render html transcript")
}
