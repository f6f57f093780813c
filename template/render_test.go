package template

import "testing"

// TestRenderKeyValueBinding exercises S1 from spec.md §8: a template bound
// by alternating key/value arguments.
func TestRenderKeyValueBinding(t *testing.T) {
	p := Parse("User {name} from {ip}")
	r := Render(p, []Arg{Str("name"), Str("alice"), Str("ip"), Str("10.0.0.1")})

	const want = "User alice from 10.0.0.1"
	if r.Message != want {
		t.Fatalf("Message = %q, want %q", r.Message, want)
	}
	if len(r.Properties) != 2 || r.Properties[0].Value != "alice" || r.Properties[1].Value != "10.0.0.1" {
		t.Fatalf("Properties = %+v", r.Properties)
	}
}

// TestRenderCommaTransform exercises S2 from spec.md §8: a comma transform
// with a fixed-precision argument.
func TestRenderCommaTransform(t *testing.T) {
	p := Parse("Price: {amount|comma:.2f}")
	r := Render(p, []Arg{Float(1234567.891)})

	const want = "Price: 1,234,567.89"
	if r.Message != want {
		t.Fatalf("Message = %q, want %q", r.Message, want)
	}
}

func TestRenderIndexedBinding(t *testing.T) {
	p := Parse("{0}-{1}-{0}")
	r := Render(p, []Arg{Str("a"), Str("b")})
	if r.Message != "a-b-a" {
		t.Fatalf("Message = %q, want %q", r.Message, "a-b-a")
	}
}

func TestRenderPositionalBinding(t *testing.T) {
	p := Parse("{user} did {action}")
	r := Render(p, []Arg{Str("bob"), Str("login")})
	if r.Message != "bob did login" {
		t.Fatalf("Message = %q, want %q", r.Message, "bob did login")
	}
}

func TestRenderPositionalRepeatedName(t *testing.T) {
	p := Parse("{x} + {x} = {sum}")
	r := Render(p, []Arg{Int(2), Int(4)})
	if r.Message != "2 + 2 = 4" {
		t.Fatalf("Message = %q, want %q", r.Message, "2 + 2 = 4")
	}
}

func TestRenderAlignment(t *testing.T) {
	p := Parse("[{name,6}]")
	r := Render(p, []Arg{Str("ab")})
	if r.Message != "[    ab]" {
		t.Fatalf("Message = %q, want %q", r.Message, "[    ab]")
	}

	p = Parse("[{name,-6}]")
	r = Render(p, []Arg{Str("ab")})
	if r.Message != "[ab    ]" {
		t.Fatalf("Message = %q, want %q", r.Message, "[ab    ]")
	}
}

func TestRenderFormatSpec(t *testing.T) {
	p := Parse("{v:0005}")
	r := Render(p, []Arg{Int(-7)})
	if r.Message != "-0007" {
		t.Fatalf("Message = %q, want %q", r.Message, "-0007")
	}
}

func TestRenderUnboundPlaceholder(t *testing.T) {
	p := Parse("hello {name}")
	r := Render(p, nil)
	if r.Message != "hello {name}" {
		t.Fatalf("Message = %q, want %q", r.Message, "hello {name}")
	}
}
