package prompt

import (
	"errors"
	"reflect"
	"testing"
)

func TestRender(t *testing.T) {
	t.Run("substitutes placeholders", func(t *testing.T) {
		out, err := Render("quote", "Dear {client_name}, your total is {total}.", map[string]string{
			"client_name": "Acme",
			"total":       "$1,200",
		})
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if out != "Dear Acme, your total is $1,200." {
			t.Errorf("unexpected output: %q", out)
		}
	})

	t.Run("repeated placeholder", func(t *testing.T) {
		out, err := Render("p", "{x} and {x}", map[string]string{"x": "a"})
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if out != "a and a" {
			t.Errorf("unexpected output: %q", out)
		}
	})

	t.Run("missing key is an error, not blank output", func(t *testing.T) {
		_, err := Render("quote", "Dear {client_name}, from {company}.", map[string]string{
			"company": "BuildCo",
		})
		var renderErr *RenderError
		if !errors.As(err, &renderErr) {
			t.Fatalf("expected *RenderError, got %v", err)
		}
		if !reflect.DeepEqual(renderErr.Missing, []string{"client_name"}) {
			t.Errorf("missing = %v, want [client_name]", renderErr.Missing)
		}
	})

	t.Run("extra vars are ignored", func(t *testing.T) {
		out, err := Render("p", "hello {name}", map[string]string{"name": "x", "unused": "y"})
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if out != "hello x" {
			t.Errorf("unexpected output: %q", out)
		}
	})

	t.Run("no placeholders", func(t *testing.T) {
		out, err := Render("p", "static text", nil)
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if out != "static text" {
			t.Errorf("unexpected output: %q", out)
		}
	})
}

func TestVars(t *testing.T) {
	got := Vars("{b} then {a} then {b} and {{not_a_var}")
	// {{not_a_var} still contains the placeholder {not_a_var}.
	want := []string{"b", "a", "not_a_var"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Vars() = %v, want %v", got, want)
	}
}
