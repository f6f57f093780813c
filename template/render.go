package template

import (
	"strings"

	"github.com/corvidlabs/quill/core"
)

const maxAlignWidth = 1024

// Rendered is the outcome of rendering one Plan against bound arguments.
type Rendered struct {
	Message    string
	Properties []core.Property
	Warnings   []string
}

// Render walks p's tokens, binding each placeholder to an argument via
// binding, running its transform/format pipeline, and assembling the
// final message text and bound property list.
func Render(p *Plan, args []Arg) Rendered {
	binding := Bind(p, args)

	var out Rendered
	out.Warnings = append(out.Warnings, p.Warnings...)
	if binding.Warning != "" {
		out.Warnings = append(out.Warnings, binding.Warning)
	}

	seen := map[string]bool{}
	var msg strings.Builder

	for _, tok := range p.Tokens {
		switch t := tok.(type) {
		case TextToken:
			msg.WriteString(t.Text)
		case Placeholder:
			name := strings.TrimSpace(t.Name)
			arg, bound := binding.Values[name]
			if !bound {
				msg.WriteString("{" + t.Raw + "}")
				continue
			}

			raw, kind := arg.Raw(), arg.Kind
			raw, kind = applyTransforms(raw, kind, t.Xforms)
			rendered := ApplyFormatSpec(raw, t.Spec)
			if t.HasAlign {
				rendered = applyAlign(rendered, t.Align)
			}
			msg.WriteString(rendered)

			if name != "" && !seen[name] {
				seen[name] = true
				op := propertyOp(t.Op)
				out.Properties = append(out.Properties, core.Property{
					Name:  name,
					Value: rendered,
					Op:    op,
					Raw:   arg.Raw(),
				})
			}
		}
	}

	out.Message = msg.String()
	return out
}

func propertyOp(b byte) core.Operator {
	switch b {
	case '@':
		return core.OpDestructure
	case '$':
		return core.OpStringify
	default:
		return core.OpNone
	}
}

func applyAlign(s string, width int) string {
	w := width
	leftAlign := w < 0
	if leftAlign {
		w = -w
	}
	if w > maxAlignWidth {
		w = maxAlignWidth
	}
	runes := []rune(s)
	if len(runes) >= w {
		return s
	}
	pad := strings.Repeat(" ", w-len(runes))
	if leftAlign {
		return s + pad
	}
	return pad + s
}
