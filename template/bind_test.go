package template

import "testing"

func TestBindDisciplineSelection(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		args []Arg
		want Discipline
	}{
		{"indexed", "{0} {1}", []Arg{Str("a"), Str("b")}, DisciplineIndexed},
		{"key-value", "{a} {b}", []Arg{Str("a"), Int(1), Str("b"), Int(2)}, DisciplineKeyValue},
		{"positional", "{a} {b}", []Arg{Int(1), Int(2)}, DisciplinePositional},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Parse(tt.tmpl)
			b := Bind(p, tt.args)
			if b.Discipline != tt.want {
				t.Errorf("Discipline = %v, want %v", b.Discipline, tt.want)
			}
		})
	}
}

func TestBindPositionalFallbackWarns(t *testing.T) {
	p := Parse("{a} {b} {c}")
	b := Bind(p, []Arg{Int(1), Int(2)})
	if b.Discipline != DisciplinePositional {
		t.Fatalf("Discipline = %v, want positional", b.Discipline)
	}
	if b.Warning == "" {
		t.Errorf("expected a fallback warning for argument-count mismatch")
	}
}

func TestBindKeyValueRequiresMatchingNames(t *testing.T) {
	p := Parse("{a} {b}")
	b := Bind(p, []Arg{Str("a"), Int(1), Str("z"), Int(2)})
	if b.Discipline != DisciplinePositional {
		t.Fatalf("Discipline = %v, want positional fallback when keys don't match", b.Discipline)
	}
}
