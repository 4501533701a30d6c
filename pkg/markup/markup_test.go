package markup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTML_InlineMarks(t *testing.T) {
	require.Equal(t,
		"<strong>Booking</strong> for <em>Ann</em>: <code>b-1</code><br>next",
		HTML("**Booking** for *Ann*: `b-1`\nnext"))
}

func TestHTML_EscapesBeforeMarkup(t *testing.T) {
	got := HTML(`<script>alert("x")</script> & **<b>**`)
	require.NotContains(t, got, "<script>")
	require.NotContains(t, got, "<b>")
	require.Contains(t, got, "&lt;script&gt;")
	require.Contains(t, got, "&amp;")
	require.Contains(t, got, "<strong>&lt;b&gt;</strong>")
}

func TestEscapeHTML_Metacharacters(t *testing.T) {
	for _, in := range []string{"<", ">", "&", `"`, "'", "<img src=x onerror=alert(1)>", "a < b && c > d"} {
		out := EscapeHTML(in)
		require.NotContains(t, out, "<", in)
		require.NotContains(t, out, ">", in)
		require.Equal(t, in, htmlUnescape(out))
	}
}

func htmlUnescape(s string) string {
	r := strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&", "&#34;", `"`, "&#39;", "'")
	return r.Replace(s)
}

func TestPlain(t *testing.T) {
	require.Equal(t, "Booking for Ann: b-1", Plain("**Booking** for *Ann*: `b-1`"))
}

func TestTerminal_StripsControlSequences(t *testing.T) {
	st := Styles{}
	got := st.Terminal("hi\x1b[2Jthere\n\tok\x07")
	require.Equal(t, "hi[2Jthere\n\tok", got)
}

func TestTerminal_KeepsText(t *testing.T) {
	got := DefaultStyles().Terminal("**bold** and `code`")
	require.Contains(t, got, "bold")
	require.Contains(t, got, "code")
	require.NotContains(t, got, "**")
	require.NotContains(t, got, "`")
}
