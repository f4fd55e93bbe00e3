package tool

import (
	"context"
	"errors"
	"testing"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	echo := func(ctx context.Context, input string) (string, error) {
		return input, nil
	}
	if err := r.Register(Definition{Name: "echo", Description: "repeat input"}, echo); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	t.Run("DuplicateRejected", func(t *testing.T) {
		if err := r.Register(Definition{Name: "echo"}, echo); err == nil {
			t.Error("Expected error for duplicate registration")
		}
	})

	t.Run("Execute", func(t *testing.T) {
		out, err := r.Execute(context.Background(), "echo", "hello")
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if out != "hello" {
			t.Errorf("Expected 'hello', got '%s'", out)
		}
	})

	t.Run("UnknownTool", func(t *testing.T) {
		if _, err := r.Execute(context.Background(), "missing", ""); err == nil {
			t.Error("Expected error for unknown tool")
		}
	})

	t.Run("Lookup", func(t *testing.T) {
		if !r.Has("echo") {
			t.Error("Expected echo to be registered")
		}
		if r.Has("missing") {
			t.Error("Unexpected tool 'missing'")
		}
		def, ok := r.Get("echo")
		if !ok || def.Description != "repeat input" {
			t.Errorf("Get returned %+v, %v", def, ok)
		}
	})

	t.Run("ListSorted", func(t *testing.T) {
		r.Register(Definition{Name: "alpha"}, echo)
		defs := r.List()
		if len(defs) != 2 || defs[0].Name != "alpha" || defs[1].Name != "echo" {
			t.Errorf("Unexpected list: %+v", defs)
		}
		if r.Count() != 2 {
			t.Errorf("Expected count 2, got %d", r.Count())
		}
	})

	t.Run("Unregister", func(t *testing.T) {
		r.Unregister("alpha")
		if r.Has("alpha") {
			t.Error("alpha should be gone")
		}
	})
}

func TestRegistry_ExecutorErrors(t *testing.T) {
	r := NewRegistry()
	boom := errors.New("boom")
	r.Register(Definition{Name: "fail"}, func(ctx context.Context, input string) (string, error) {
		return "", boom
	})

	_, err := r.Execute(context.Background(), "fail", "")
	if !errors.Is(err, boom) {
		t.Errorf("Expected executor error passed through, got %v", err)
	}
}

func TestCalculate(t *testing.T) {
	cases := []struct {
		name string
		expr string
		want string
	}{
		{"Addition", "1 + 2", "3"},
		{"Precedence", "2 + 3 * 4", "14"},
		{"Parens", "(2 + 3) * 4", "20"},
		{"Division", "10 / 4", "2.5"},
		{"Power", "2 ** 10", "1024"},
		{"Modulo", "17 % 5", "2"},
		{"Negative", "-3 + 1", "-2"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Calculate(context.Background(), tc.expr)
			if err != nil {
				t.Fatalf("Calculate(%q) failed: %v", tc.expr, err)
			}
			if got != tc.want {
				t.Errorf("Calculate(%q) = %s, want %s", tc.expr, got, tc.want)
			}
		})
	}
}

func TestCalculate_Errors(t *testing.T) {
	if _, err := Calculate(context.Background(), ""); err == nil {
		t.Error("Expected error for empty expression")
	}
	if _, err := Calculate(context.Background(), "2 +"); err == nil {
		t.Error("Expected error for malformed expression")
	}
	if _, err := Calculate(context.Background(), "os.Exit(1)"); err == nil {
		t.Error("Expected error for unknown identifiers")
	}
}

func TestRegisterBuiltins(t *testing.T) {
	r := NewRegistry()
	if err := RegisterBuiltins(r); err != nil {
		t.Fatalf("RegisterBuiltins failed: %v", err)
	}
	if !r.Has("calculate") {
		t.Error("Expected calculate to be registered")
	}

	out, err := r.Execute(context.Background(), "calculate", "6 * 7")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if out != "42" {
		t.Errorf("Expected '42', got '%s'", out)
	}
}
