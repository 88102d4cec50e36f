package querybuilder

import (
	"strconv"
	"strings"
)

// argWriter accumulates SQL text and positional arguments ($1, $2, ...).
type argWriter struct {
	buf  strings.Builder
	args []any
}

func (w *argWriter) bind(value any) {
	w.args = append(w.args, value)
	w.buf.WriteString("$")
	w.buf.WriteString(strconv.Itoa(len(w.args)))
}

// writeExpr copies expr replacing each '?' with the next bound argument.
// Surplus '?' characters are written verbatim.
func (w *argWriter) writeExpr(expr string, exprArgs []any) {
	next := 0
	for i := 0; i < len(expr); i++ {
		if expr[i] == '?' && next < len(exprArgs) {
			w.bind(exprArgs[next])
			next++
			continue
		}
		w.buf.WriteByte(expr[i])
	}
}

func (w *argWriter) where(conditions []Condition) {
	if len(conditions) == 0 {
		return
	}
	w.buf.WriteString(" WHERE ")
	for i, c := range conditions {
		if i > 0 {
			w.buf.WriteString(" AND ")
		}
		c.write(w)
	}
}

type Condition interface {
	write(w *argWriter)
}

type condFunc func(w *argWriter)

func (f condFunc) write(w *argWriter) { f(w) }

func Eq(column string, value any) Condition {
	return condFunc(func(w *argWriter) {
		w.buf.WriteString(column)
		w.buf.WriteString(" = ")
		w.bind(value)
	})
}

// Expr is a raw condition with '?' placeholders.
func Expr(expr string, args ...any) Condition {
	return condFunc(func(w *argWriter) {
		w.writeExpr(expr, args)
	})
}
