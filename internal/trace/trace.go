// Package trace records the ordered steps an algorithm performs so a
// presentation layer can replay them. Steps are structured records; rendering
// beyond the plain String form belongs to the consumer.
package trace

import (
	"fmt"
	"strings"
)

// Operand is one named input of a step.
type Operand struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Step describes a single state transition.
type Step struct {
	Kind     string    `json:"kind"`
	Operands []Operand `json:"operands,omitempty"`
	Result   string    `json:"result,omitempty"`
}

// String renders the step as "kind(a=1, b=2) = result".
func (s Step) String() string {
	var b strings.Builder
	b.WriteString(s.Kind)
	if len(s.Operands) > 0 {
		b.WriteByte('(')
		for i, op := range s.Operands {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(op.Name)
			b.WriteByte('=')
			b.WriteString(op.Value)
		}
		b.WriteByte(')')
	}
	if s.Result != "" {
		b.WriteString(" = ")
		b.WriteString(s.Result)
	}
	return b.String()
}

// Trace is an ordered list of steps. Order mirrors execution and must be kept.
type Trace []Step

// Add appends a step. kv is a flat list of name, value pairs; values are
// formatted with %v.
func (t *Trace) Add(kind string, result any, kv ...any) {
	st := Step{Kind: kind, Result: format(result)}
	for i := 0; i+1 < len(kv); i += 2 {
		st.Operands = append(st.Operands, Operand{Name: fmt.Sprint(kv[i]), Value: format(kv[i+1])})
	}
	*t = append(*t, st)
}

// Lines renders every step with Step.String.
func (t Trace) Lines() []string {
	out := make([]string, len(t))
	for i, s := range t {
		out[i] = s.String()
	}
	return out
}

// Kinds returns the kind of each step in order.
func (t Trace) Kinds() []string {
	out := make([]string, len(t))
	for i, s := range t {
		out[i] = s.Kind
	}
	return out
}

func format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
