package render

import (
	"strings"
)

// Attr is one attribute on an [Element]. Attributes render in slice order so
// repeated invocations produce identical output.
type Attr struct {
	Key   string
	Value string
}

// Element is a node in the pseudo-XML guidance document.
//
// Rendering rules:
//   - no lines and no children: self-closing form, "<name />"
//   - exactly one line and no children: inline form, "<name>line</name>"
//   - otherwise: block form with two-space indentation per nesting level
//
// Lines are emitted before Children. Empty lines inside Lines are preserved
// as blank output lines without indentation.
type Element struct {
	Name     string
	Attrs    []Attr
	Lines    []string
	Children []Element
}

// String renders the element and its subtree, terminated by a newline.
func (e Element) String() string {
	var b strings.Builder
	e.write(&b, 0)
	return b.String()
}

func (e Element) write(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	b.WriteString(indent)
	b.WriteByte('<')
	b.WriteString(e.Name)
	for _, a := range e.Attrs {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(escapeAttr(a.Value))
		b.WriteByte('"')
	}

	switch {
	case len(e.Lines) == 0 && len(e.Children) == 0:
		b.WriteString(" />\n")
		return
	case len(e.Lines) == 1 && len(e.Children) == 0:
		b.WriteByte('>')
		b.WriteString(e.Lines[0])
		b.WriteString("</")
		b.WriteString(e.Name)
		b.WriteString(">\n")
		return
	}

	b.WriteString(">\n")
	for _, line := range e.Lines {
		if line == "" {
			b.WriteByte('\n')
			continue
		}
		b.WriteString(indent)
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for _, c := range e.Children {
		c.write(b, depth+1)
	}
	b.WriteString(indent)
	b.WriteString("</")
	b.WriteString(e.Name)
	b.WriteString(">\n")
}

// BlockLines renders the element and splits it into individual lines, ready to
// be embedded inside another guidance block's action list.
func (e Element) BlockLines() []string {
	return strings.Split(strings.TrimRight(e.String(), "\n"), "\n")
}

func escapeAttr(v string) string {
	v = strings.ReplaceAll(v, "&", "&amp;")
	v = strings.ReplaceAll(v, `"`, "&quot;")
	v = strings.ReplaceAll(v, "<", "&lt;")
	v = strings.ReplaceAll(v, ">", "&gt;")
	return v
}
