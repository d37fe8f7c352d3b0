package stylesheet

import (
	"errors"
	"testing"

	"github.com/chazu/loom/protocol"
)

type stubHost struct {
	fn func(name string, args []protocol.Value) (protocol.Value, error)
}

func (s stubHost) FunctionCall(name string, args []protocol.Value) (protocol.Value, error) {
	if s.fn != nil {
		return s.fn(name, args)
	}
	return protocol.Value{}, errors.New("no function registered")
}

func (s stubHost) Canonicalize(importerID uint32, url string, fromImport bool) (string, bool, error) {
	return "", false, errors.New("not implemented")
}

func (s stubHost) Load(importerID uint32, canonicalURL string) (protocol.ImportResult, bool, error) {
	return protocol.ImportResult{}, false, errors.New("not implemented")
}

func (s stubHost) FileImport(importerID uint32, url string, fromImport bool) (string, bool, error) {
	return "", false, errors.New("not implemented")
}

func (s stubHost) Log(level protocol.LogLevel, message string, span *protocol.SourceSpan, stackTrace string) {
}

func TestEvalDimensionAddition(t *testing.T) {
	ctx := &evalContext{host: stubHost{}}
	expr := &BinaryExpr{Op: OpAdd,
		Left:  &DimensionLiteral{Value: 1, Unit: "px"},
		Right: &DimensionLiteral{Value: 2, Unit: "px"},
	}
	v, err := ctx.evalExpr(expr)
	if err != nil {
		t.Fatalf("evalExpr: %v", err)
	}
	if formatValue(v) != "3px" {
		t.Errorf("formatValue = %q, want %q", formatValue(v), "3px")
	}
}

func TestEvalIncompatibleUnits(t *testing.T) {
	ctx := &evalContext{host: stubHost{}}
	expr := &BinaryExpr{Op: OpAdd,
		Left:  &DimensionLiteral{Value: 1, Unit: "px"},
		Right: &DimensionLiteral{Value: 2, Unit: "em"},
	}
	if _, err := ctx.evalExpr(expr); err == nil {
		t.Fatal("want error for incompatible units")
	}
}

func TestEvalUnitlessPropagates(t *testing.T) {
	ctx := &evalContext{host: stubHost{}}
	expr := &BinaryExpr{Op: OpMul,
		Left:  &DimensionLiteral{Value: 2, Unit: ""},
		Right: &DimensionLiteral{Value: 3, Unit: "px"},
	}
	v, err := ctx.evalExpr(expr)
	if err != nil {
		t.Fatalf("evalExpr: %v", err)
	}
	if formatValue(v) != "6px" {
		t.Errorf("formatValue = %q, want %q", formatValue(v), "6px")
	}
}

func TestEvalFunctionCallDispatchesToHost(t *testing.T) {
	ctx := &evalContext{host: stubHost{fn: func(name string, args []protocol.Value) (protocol.Value, error) {
		if name != "darken" {
			t.Fatalf("name = %q", name)
		}
		return protocol.StringValue("#000000"), nil
	}}}
	v, err := ctx.evalExpr(&FunctionCall{Name: "darken", Args: []Expr{&StringLiteral{Value: "red"}}})
	if err != nil {
		t.Fatalf("evalExpr: %v", err)
	}
	if formatValue(v) != "#000000" {
		t.Errorf("formatValue = %q", formatValue(v))
	}
}

func TestRenderRuleExpandedAndCompressed(t *testing.T) {
	if got := renderRule(StyleExpanded, "a", []string{"b: 1px;"}); got != "a { b: 1px; }" {
		t.Errorf("expanded = %q", got)
	}
	if got := renderRule(StyleCompressed, "a", []string{"b:1px"}); got != "a{b:1px}" {
		t.Errorf("compressed = %q", got)
	}
}
