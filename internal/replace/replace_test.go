package replace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapOf(pairs ...string) *Map {
	m := NewMap()
	for i := 0; i+1 < len(pairs); i += 2 {
		m.Set(pairs[i], pairs[i+1])
	}
	return m
}

func TestReplaceInText_Link(t *testing.T) {
	out := ReplaceInText("See [diagram](https://x.test/d.png) here.", mapOf("https://x.test/d.png", "assets/d.png"))
	assert.Equal(t, "See [diagram](d.png) here.", out)
}

func TestReplaceInText_ImageKeepsAltText(t *testing.T) {
	text := "![A chart](https://x.test/c.png) and again ![](https://x.test/c.png)"
	out, changes := Replace(text, mapOf("https://x.test/c.png", "assets/notes/c.png"))
	assert.Equal(t, "![A chart](c.png) and again ![](c.png)", out)
	require.Len(t, changes, 1)
	assert.Equal(t, ContextImage, changes[0].Context)
	assert.Equal(t, 2, changes[0].Count)
}

func TestReplaceInText_BareBecomesLink(t *testing.T) {
	text := "Get https://x.test/r.pdf now, or https://x.test/r.pdf."
	out := ReplaceInText(text, mapOf("https://x.test/r.pdf", "assets/r.pdf"))
	assert.Equal(t, "Get [r.pdf](r.pdf) now, or [r.pdf](r.pdf).", out)
}

func TestReplaceInText_BareSkipsLongerURLs(t *testing.T) {
	text := "https://x.test/r.pdf https://x.test/r.pdfx"
	out := ReplaceInText(text, mapOf("https://x.test/r.pdf", "assets/r.pdf"))
	assert.Equal(t, "[r.pdf](r.pdf) https://x.test/r.pdfx", out)
}

func TestReplaceInText_LinkNotConfusedWithImage(t *testing.T) {
	text := "[doc](https://x.test/a.pdf) ![img](https://x.test/b.png)"
	out := ReplaceInText(text, mapOf("https://x.test/a.pdf", "f/a.pdf", "https://x.test/b.png", "f/b.png"))
	assert.Equal(t, "[doc](a.pdf) ![img](b.png)", out)
}

func TestReplaceInText_ImageTakesPrecedenceOverOtherSyntax(t *testing.T) {
	text := "![i](https://x.test/a.png) [l](https://x.test/a.png)"
	out := ReplaceInText(text, mapOf("https://x.test/a.png", "f/a.png"))
	assert.Equal(t, "![i](a.png) [l](https://x.test/a.png)", out)
}

func TestReplaceInText_EscapesSpecialCharacters(t *testing.T) {
	url := "https://x.test/a+b(1).png?q=[x]&y=$1"
	text := "![pic](" + url + ")"
	out := ReplaceInText(text, mapOf(url, "assets/a_b_1_.png"))
	assert.Equal(t, "![pic](a_b_1_.png)", out)

	out = ReplaceInText("see https://x.test/a.b.pdf", mapOf("https://x.test/a.b.pdf", "assets/$x.pdf"))
	assert.Equal(t, "see [$x.pdf]($x.pdf)", out)
}

func TestReplaceInText_KeepsLinkTitle(t *testing.T) {
	text := `[slides](https://x.test/s.pdf "The Deck") and [b](<https://x.test/b.pdf>)`
	out := ReplaceInText(text, mapOf("https://x.test/s.pdf", "a/s.pdf", "https://x.test/b.pdf", "a/b.pdf"))
	assert.Equal(t, `[slides](s.pdf "The Deck") and [b](b.pdf)`, out)
}

func TestReplaceInText_HTMLImage(t *testing.T) {
	text := `<img src="https://x.test/logo.svg" alt="Logo">`
	out, changes := New(Options{HTMLImages: true}).Replace(text, mapOf("https://x.test/logo.svg", "assets/logo.svg"))
	assert.Equal(t, `<img src="logo.svg" alt="Logo">`, out)
	require.Len(t, changes, 1)
	assert.Equal(t, ContextHTMLImage, changes[0].Context)
}

func TestReplace_HTMLImagesDisabledRewritesLink(t *testing.T) {
	text := "See [report](https://x.test/r.pdf).\n\n<img src=\"https://x.test/r.pdf\">\n"
	out, changes := New(Options{}).Replace(text, mapOf("https://x.test/r.pdf", "assets/r.pdf"))
	assert.Equal(t, "See [report](r.pdf).\n\n<img src=\"https://x.test/r.pdf\">\n", out)
	require.Len(t, changes, 1)
	assert.Equal(t, ContextLink, changes[0].Context)
}

func TestReplace_SkipCode(t *testing.T) {
	r := New(Options{SkipCode: true})

	tests := []struct {
		name string
		text string
		want string
		ctx  Context
	}{
		{
			name: "fenced block keeps bare url",
			text: "Get https://x.test/r.pdf now.\n\n```\ncurl https://x.test/r.pdf\n```\n",
			want: "Get [r.pdf](r.pdf) now.\n\n```\ncurl https://x.test/r.pdf\n```\n",
			ctx:  ContextBare,
		},
		{
			name: "image syntax in inline code does not win",
			text: "Use `![x](https://x.test/r.pdf)` syntax. Download [report](https://x.test/r.pdf).",
			want: "Use `![x](https://x.test/r.pdf)` syntax. Download [report](r.pdf).",
			ctx:  ContextLink,
		},
		{
			name: "only code occurrences",
			text: "`https://x.test/r.pdf`",
			want: "`https://x.test/r.pdf`",
			ctx:  ContextNone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, changes := r.Replace(tt.text, mapOf("https://x.test/r.pdf", "assets/r.pdf"))
			assert.Equal(t, tt.want, out)
			if tt.ctx == ContextNone {
				assert.Empty(t, changes)
				return
			}
			require.Len(t, changes, 1)
			assert.Equal(t, tt.ctx, changes[0].Context)
		})
	}
}

func TestReplaceInText_BareKeepsLongerDottedURLs(t *testing.T) {
	text := "https://x.test/a.pdf https://x.test/a.pdf.bak and https://x.test/a.pdf."
	out := ReplaceInText(text, mapOf("https://x.test/a.pdf", "assets/a.pdf"))
	assert.Equal(t, "[a.pdf](a.pdf) https://x.test/a.pdf.bak and [a.pdf](a.pdf).", out)
}

func TestReplaceInText_Idempotent(t *testing.T) {
	m := mapOf("https://x.test/d.png", "assets/d.png", "https://x.test/r.pdf", "assets/r.pdf")
	text := "![d](https://x.test/d.png) https://x.test/r.pdf"

	once := ReplaceInText(text, m)
	assert.NotContains(t, once, "https://x.test/")
	twice := ReplaceInText(once, m)
	assert.Equal(t, once, twice)

	_, changes := Replace(once, m)
	assert.Empty(t, changes)
}

func TestReplaceInText_SkipsEmptyEntries(t *testing.T) {
	text := "https://x.test/a.pdf"
	assert.Equal(t, text, ReplaceInText(text, mapOf("https://x.test/a.pdf", "")))
	assert.Equal(t, text, ReplaceInText(text, nil))
}

func TestMap_InsertionOrder(t *testing.T) {
	m := mapOf("b", "1", "a", "2")
	m.Set("b", "3")
	assert.Equal(t, []string{"b", "a"}, m.Keys())
	v, ok := m.Get("b")
	assert.True(t, ok)
	assert.Equal(t, "3", v)
	assert.Equal(t, 2, m.Len())
}

func TestTarget(t *testing.T) {
	assert.Equal(t, "d.png", Target("assets/notes/d.png"))
	assert.Equal(t, "d.png", Target("d.png"))
}
