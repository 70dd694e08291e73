package methodid

import "testing"

func TestNewSimple(t *testing.T) {
	id := New("Calc", "Calculator", "Add", nil, []string{"Int32", "Int32"})
	if id != "Calc.Calculator.Add(Int32,Int32)" {
		t.Fatalf("got %q", id)
	}
}

func TestNewGeneric(t *testing.T) {
	id := New("Calc", "Repo", "Find", []string{"T"}, []string{"String"})
	if id != "Calc.Repo.Find<T>(String)" {
		t.Fatalf("got %q", id)
	}
}

func TestNewNoParams(t *testing.T) {
	id := New("Calc", "Calculator", "Reset", nil, nil)
	if id != "Calc.Calculator.Reset()" {
		t.Fatalf("got %q", id)
	}
}

func TestNewNestedType(t *testing.T) {
	id := New("Calc", "Outer+Inner", "Run", nil, nil)
	if id != "Calc.Outer+Inner.Run()" {
		t.Fatalf("got %q", id)
	}
}

func TestLambda(t *testing.T) {
	enclosing := New("Calc", "Calculator", "Add", nil, []string{"Int32", "Int32"})
	id := Lambda(enclosing, "$lambda_1")
	if id != MethodID("Calc.Calculator.Add(Int32,Int32)/$lambda_1") {
		t.Fatalf("got %q", id)
	}
}

func TestDeclaringType(t *testing.T) {
	id := New("Calc", "Calculator", "Add", nil, []string{"Int32", "Int32"})
	if got := DeclaringType(id); got != "Calc.Calculator" {
		t.Fatalf("got %q", got)
	}

	generic := New("Calc", "Repo", "Find", []string{"T"}, []string{"String"})
	if got := DeclaringType(generic); got != "Calc.Repo" {
		t.Fatalf("got %q", got)
	}
}
