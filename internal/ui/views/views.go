// Package views holds the dashboard page and the report fragments patched
// into it over SSE.
package views

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

const (
	MaxProductRows = 20
	MaxStockRows   = 100
)

// htmlWriter writes markup and keeps the first write error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (hw *htmlWriter) raw(s string) {
	if hw.err != nil {
		return
	}
	_, hw.err = io.WriteString(hw.w, s)
}

// text writes s escaped for element content and quoted attribute values.
func (hw *htmlWriter) text(s string) {
	hw.raw(templ.EscapeString(s))
}

// jsString writes s as a JavaScript string literal inside an attribute.
func (hw *htmlWriter) jsString(s string) {
	b, err := json.Marshal(s)
	if err != nil {
		hw.err = err
		return
	}
	hw.text(string(b))
}

func (hw *htmlWriter) money(v float64) {
	hw.raw(money(v))
}

func (hw *htmlWriter) qty(v float64) {
	hw.raw(qty(v))
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// qty prints a quantity with at most two decimals and no trailing zeros.
func qty(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

func component(render func(hw *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		hw := &htmlWriter{w: w}
		render(hw)
		return hw.err
	})
}

// RenderString renders c into a string, for SSE element patches.
func RenderString(ctx context.Context, c templ.Component) (string, error) {
	var buf strings.Builder
	if err := c.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
