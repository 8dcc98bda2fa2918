package templates

import (
	"io"

	"github.com/a-h/templ"

	"github.com/louisbranch/luxereward/internal/platform/icons"
)

// markup writes HTML and keeps the first write error.
type markup struct {
	w   io.Writer
	err error
}

func (m *markup) raw(parts ...string) {
	for _, part := range parts {
		if m.err != nil {
			return
		}
		_, m.err = io.WriteString(m.w, part)
	}
}

// text writes escaped character data.
func (m *markup) text(value string) {
	m.raw(templ.EscapeString(value))
}

// attr writes ` name="value"` with value escaped.
func (m *markup) attr(name, value string) {
	m.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

func (m *markup) icon(id icons.ID, class string) {
	m.raw(`<svg aria-hidden="true"`)
	m.attr("class", "icon "+class)
	m.raw(`><use`)
	m.attr("href", "#"+icons.LucideSymbolID(icons.LucideNameOrDefault(id)))
	m.raw(`></use></svg>`)
}
