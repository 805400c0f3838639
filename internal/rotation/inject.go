package rotation

import (
	"fmt"
	"strings"
)

// DefaultInjectAfter are the paragraph indices the in-article injector
// inserts slots behind, provided enough content follows.
var DefaultInjectAfter = []int{3, 6}

// InjectOptions configures in-article slot insertion.
type InjectOptions struct {
	Disabled        bool
	AfterParagraphs []int              // defaults to DefaultInjectAfter
	RenderSlot      func(n int) string // markup for the n-th inserted slot
}

func defaultSlot(n int) string {
	return fmt.Sprintf(`<div class="ftj-ad-slot" data-slot="%d"></div>`, n)
}

// InjectIntoHTML locates paragraph-closing boundaries in raw article HTML
// and inserts ad slots after the configured paragraph indices, plus one
// final slot after the last content chunk. Content with no detected
// paragraph boundaries, or with injection disabled, is returned unmodified.
// The second return value is the number of slots inserted.
func InjectIntoHTML(content string, opts InjectOptions) (string, int) {
	if opts.Disabled {
		return content, 0
	}

	after := opts.AfterParagraphs
	if after == nil {
		after = DefaultInjectAfter
	}
	renderSlot := opts.RenderSlot
	if renderSlot == nil {
		renderSlot = defaultSlot
	}

	boundaries := paragraphBoundaries(content)
	total := len(boundaries)
	if total == 0 {
		return content, 0
	}

	var b strings.Builder
	b.Grow(len(content) + 128)

	inserted := 0
	prev := 0
	for i, end := range boundaries {
		b.WriteString(content[prev:end])
		prev = end

		paragraph := i + 1
		// A mid-content slot only makes sense with content after it
		if containsInt(after, paragraph) && total > paragraph {
			inserted++
			b.WriteString(renderSlot(inserted))
		}
	}
	b.WriteString(content[prev:])

	// One more unit always follows the final content chunk
	inserted++
	b.WriteString(renderSlot(inserted))

	return b.String(), inserted
}

// paragraphBoundaries returns the offsets just past each closing </p> tag,
// case-insensitive.
func paragraphBoundaries(content string) []int {
	lower := strings.ToLower(content)
	var offsets []int

	from := 0
	for {
		idx := strings.Index(lower[from:], "</p>")
		if idx < 0 {
			return offsets
		}
		end := from + idx + len("</p>")
		offsets = append(offsets, end)
		from = end
	}
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
