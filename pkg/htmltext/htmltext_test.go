package htmltext

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestToTextDropsScriptAndStyle(t *testing.T) {
	in := `<html><head><style>p { color: red; }</style><script>alert("x")</script></head>
<body><p>Hello <b>team</b>,</p><p>Meeting moved to Friday.</p></body></html>`

	out := ToText(in)

	assert.Contains(t, out, "Hello")
	assert.Contains(t, out, "team")
	assert.Contains(t, out, "Meeting moved to Friday.")
	assert.NotContains(t, out, "alert")
	assert.NotContains(t, out, "color: red")
	assert.NotContains(t, out, "<p>")
}

func TestToTextScriptCaseInsensitive(t *testing.T) {
	out := ToText(`<SCRIPT type="text/javascript">var secret = 1;</SCRIPT><div>visible</div>`)

	assert.NotContains(t, out, "secret")
	assert.Contains(t, out, "visible")
}

func TestToTextReturnsPlainText(t *testing.T) {
	in := `<h1>Invoice ready</h1><p>Your <strong>March</strong> invoice is <a href="https://billing.example.com/inv/3">here</a>.</p>` +
		`<blockquote>Pay by Friday</blockquote><p>Total: 5*3 = 15</p>`

	out := ToText(in)

	assert.Contains(t, out, "Invoice ready")
	assert.Contains(t, out, "Your March invoice is here.")
	assert.Contains(t, out, "Pay by Friday")
	assert.Contains(t, out, "5*3 = 15")
	assert.NotContains(t, out, "**")
	assert.NotContains(t, out, "](")
	assert.NotContains(t, out, "https://billing.example.com")
	assert.NotContains(t, out, "# ")
	assert.NotContains(t, out, "> ")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "abc", Truncate("abc", 0))

	long := strings.Repeat("é", 20)
	cut := Truncate(long, 5)
	assert.Equal(t, 5, utf8.RuneCountInString(cut))
	assert.True(t, utf8.ValidString(cut))
}
