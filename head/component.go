package head

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/eringen/clinicseo/seo"
)

// Component renders the managed head tags for m, for layouts that build the
// head themselves instead of rewriting an existing document.
func Component(m seo.Metadata, opts Options) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Write(w, m, opts)
	})
}

// Write writes the managed head tags for m to w.
func Write(w io.Writer, m seo.Metadata, opts Options) error {
	for _, t := range catalog(m, opts) {
		if t.value == "" {
			continue
		}
		if _, err := io.WriteString(w, render(t)); err != nil {
			return err
		}
	}
	return nil
}

func render(t tag) string {
	open := "<" + t.element
	if t.key != "" {
		open += fmt.Sprintf(` %s="%s"`, t.key, html.EscapeString(t.keyVal))
	}
	open += " " + ManagedAttr
	switch {
	case t.attr != "":
		return open + fmt.Sprintf(` %s="%s">`, t.attr, html.EscapeString(t.value))
	case t.element == "script":
		// JSON-LD from seo.StructuredData has <, > and & escaped.
		return open + ">" + t.value + "</script>"
	default:
		return open + ">" + html.EscapeString(t.value) + "</" + t.element + ">"
	}
}
