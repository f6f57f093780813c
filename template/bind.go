package template

// Discipline identifies which binding rule resolved a template's
// placeholders against its call-site arguments (spec.md §4.1 Binding
// discipline).
type Discipline int

const (
	DisciplineIndexed Discipline = iota
	DisciplineKeyValue
	DisciplinePositional
)

func (d Discipline) String() string {
	switch d {
	case DisciplineIndexed:
		return "indexed"
	case DisciplineKeyValue:
		return "key-value"
	default:
		return "positional"
	}
}

// Binding is the resolved name→argument map for one render, plus the
// discipline that produced it and any fallback warning.
type Binding struct {
	Discipline Discipline
	Values     map[string]Arg
	Warning    string
}

// Bind resolves a Plan's placeholders against args using the binding
// discipline cascade: INDEXED, then KEY-VALUE, then POSITIONAL, with a
// clean positional fallback and warning if nothing else applies.
func Bind(p *Plan, args []Arg) Binding {
	if p.AllIndex && len(p.Order) > 0 {
		values := make(map[string]Arg, len(p.Order))
		for _, name := range p.Order {
			idx, ok := parseIndex(name)
			if !ok || idx < 0 || idx >= len(args) {
				continue
			}
			values[name] = args[idx]
		}
		return Binding{Discipline: DisciplineIndexed, Values: values}
	}

	if kv, ok := bindKeyValue(p, args); ok {
		return kv
	}

	b := bindPositional(p, args)
	if !p.AllIndex && len(args)%2 != 0 {
		// Neither binding was a clean fit; positional is the fallback.
	}
	return b
}

func parseIndex(name string) (int, bool) {
	if !isNumericName(name) {
		return 0, false
	}
	n := 0
	for i := 0; i < len(name); i++ {
		n = n*10 + int(name[i]-'0')
	}
	return n, true
}

func bindKeyValue(p *Plan, args []Arg) (Binding, bool) {
	if len(args) == 0 || len(args)%2 != 0 {
		return Binding{}, false
	}
	names := make(map[string]bool, len(p.Order))
	for _, n := range p.Order {
		names[n] = true
	}
	values := make(map[string]Arg, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		key := args[i]
		if !key.IsString() || !names[key.S] {
			return Binding{}, false
		}
		values[key.S] = args[i+1]
	}
	return Binding{Discipline: DisciplineKeyValue, Values: values}, true
}

func bindPositional(p *Plan, args []Arg) Binding {
	values := make(map[string]Arg, len(p.Order))
	next := 0
	for _, name := range p.Order {
		if next >= len(args) {
			break
		}
		values[name] = args[next]
		next++
	}
	var warn string
	if next < len(args) || next < len(p.Order) {
		warn = "positional binding fallback: argument count does not match placeholder count"
	}
	return Binding{Discipline: DisciplinePositional, Values: values, Warning: warn}
}
