// Package sqltemplate is the Go analogue of the reference implementation's
// t-string query templates (Python 3.14's Template/render in _compat.py,
// _render.py): a chainable builder that interleaves literal SQL fragments
// with bound arguments and renders them into positional "$1".."$n" SQL plus
// an ordered argument tuple, without ever string-formatting a value
// straight into the query text.
package sqltemplate

import (
	"strconv"
	"strings"
)

// Builder accumulates literal fragments and arguments in call order.
type Builder struct {
	parts []part
}

type part struct {
	isArg bool
	lit   string
	arg   any
}

// New starts an empty Builder.
func New() *Builder {
	return &Builder{}
}

// Lit appends a literal SQL fragment verbatim.
func (b *Builder) Lit(sql string) *Builder {
	b.parts = append(b.parts, part{lit: sql})
	return b
}

// Arg appends a bound argument, to be rendered as the next "$n"
// placeholder.
func (b *Builder) Arg(value any) *Builder {
	b.parts = append(b.parts, part{isArg: true, arg: value})
	return b
}

// Render produces the final SQL text and its ordered argument slice.
func (b *Builder) Render() (sql string, args []any) {
	var buf strings.Builder
	n := 0
	for _, p := range b.parts {
		if p.isArg {
			n++
			buf.WriteByte('$')
			buf.WriteString(strconv.Itoa(n))
			args = append(args, p.arg)
			continue
		}
		buf.WriteString(p.lit)
	}
	return buf.String(), args
}
