package rotation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func paragraphs(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString("<p>paragraph</p>")
	}
	return b.String()
}

func TestInjectIntoHTML_MidArticleSlots(t *testing.T) {
	html, slots := InjectIntoHTML(paragraphs(8), InjectOptions{})

	// Slots after paragraphs 3 and 6, plus the trailing slot
	assert.Equal(t, 3, slots)
	assert.Equal(t, 3, strings.Count(html, "ftj-ad-slot"))

	// The first slot sits right after the third closing tag
	idx := nthIndex(html, "</p>", 3)
	assert.True(t, strings.HasPrefix(html[idx:], `<div class="ftj-ad-slot" data-slot="1">`))
}

func TestInjectIntoHTML_ShortContent(t *testing.T) {
	// Three paragraphs: no content after paragraph 3, so no mid slot
	html, slots := InjectIntoHTML(paragraphs(3), InjectOptions{})
	assert.Equal(t, 1, slots, "only the trailing slot")
	assert.True(t, strings.HasSuffix(html, `data-slot="1"></div>`))

	// Four paragraphs: slot after 3 plus trailing
	_, slots = InjectIntoHTML(paragraphs(4), InjectOptions{})
	assert.Equal(t, 2, slots)
}

func TestInjectIntoHTML_NoParagraphs(t *testing.T) {
	content := "<div>plain block content</div>"
	html, slots := InjectIntoHTML(content, InjectOptions{})

	assert.Equal(t, 0, slots)
	assert.Equal(t, content, html, "content without paragraphs stays untouched")
}

func TestInjectIntoHTML_Disabled(t *testing.T) {
	content := paragraphs(8)
	html, slots := InjectIntoHTML(content, InjectOptions{Disabled: true})

	assert.Equal(t, 0, slots)
	assert.Equal(t, content, html)
}

func TestInjectIntoHTML_CaseInsensitiveTags(t *testing.T) {
	content := "<P>one</P><p>two</P><P>three</p><p>four</p>"
	_, slots := InjectIntoHTML(content, InjectOptions{})
	assert.Equal(t, 2, slots)
}

func TestInjectIntoHTML_CustomSlots(t *testing.T) {
	html, slots := InjectIntoHTML(paragraphs(4), InjectOptions{
		AfterParagraphs: []int{1, 2},
		RenderSlot:      func(n int) string { return "[AD]" },
	})

	assert.Equal(t, 3, slots)
	assert.Equal(t, 3, strings.Count(html, "[AD]"))
}

// nthIndex returns the offset just past the n-th occurrence of sub.
func nthIndex(s, sub string, n int) int {
	offset := 0
	for i := 0; i < n; i++ {
		idx := strings.Index(s[offset:], sub)
		if idx < 0 {
			return -1
		}
		offset += idx + len(sub)
	}
	return offset
}
