package stylesheet

import (
	"fmt"
	"strings"

	"github.com/chazu/loom/protocol"
)

// RuntimeError is a failure discovered while evaluating an expression or
// resolving an import, as opposed to a syntax error.
type RuntimeError struct {
	Pos     Position
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// OutputStyle selects how rendered CSS is formatted.
type OutputStyle int

const (
	StyleExpanded OutputStyle = iota
	StyleCompressed
)

// ParseOutputStyle maps the wire CompileRequest.Style field to an
// OutputStyle, defaulting to expanded for an empty or unrecognized value.
func ParseOutputStyle(s string) OutputStyle {
	if s == "compressed" {
		return StyleCompressed
	}
	return StyleExpanded
}

// FunctionCaller resolves a custom function call against the host. It is
// the narrow slice of engine.HostServices the codegen stage needs, kept
// separate so this package does not import package engine (which imports
// this package to construct the default Engine).
type FunctionCaller interface {
	FunctionCall(name string, args []protocol.Value) (protocol.Value, error)
}

// evalContext carries per-compile evaluation state through expression
// evaluation.
type evalContext struct {
	host HostCallbacks
}

func (c *evalContext) evalExpr(e Expr) (protocol.Value, error) {
	switch n := e.(type) {
	case *DimensionLiteral:
		return protocol.NumberValue(n.Value, n.Unit), nil
	case *StringLiteral:
		return protocol.StringValue(n.Value), nil
	case *Identifier:
		return protocol.StringValue(n.Name), nil
	case *FunctionCall:
		args := make([]protocol.Value, len(n.Args))
		for i, a := range n.Args {
			v, err := c.evalExpr(a)
			if err != nil {
				return protocol.Value{}, err
			}
			args[i] = v
		}
		v, err := c.host.FunctionCall(n.Name, args)
		if err != nil {
			return protocol.Value{}, &RuntimeError{Pos: n.Pos, Message: fmt.Sprintf("error calling function %q: %v", n.Name, err)}
		}
		return v, nil
	case *BinaryExpr:
		left, err := c.evalExpr(n.Left)
		if err != nil {
			return protocol.Value{}, err
		}
		right, err := c.evalExpr(n.Right)
		if err != nil {
			return protocol.Value{}, err
		}
		return evalBinary(n.Pos, n.Op, left, right)
	default:
		return protocol.Value{}, &RuntimeError{Message: fmt.Sprintf("unhandled expression node %T", e)}
	}
}

func evalBinary(pos Position, op BinaryOp, left, right protocol.Value) (protocol.Value, error) {
	if left.Number != nil && right.Number != nil {
		return evalNumeric(pos, op, *left.Number, left.Unit, *right.Number, right.Unit)
	}
	if op == OpAdd {
		return protocol.StringValue(formatValue(left) + formatValue(right)), nil
	}
	return protocol.Value{}, &RuntimeError{Pos: pos, Message: "undefined operation for these operand types"}
}

func evalNumeric(pos Position, op BinaryOp, l float64, lu string, r float64, ru string) (protocol.Value, error) {
	switch op {
	case OpAdd, OpSub:
		unit, err := combineUnits(pos, lu, ru)
		if err != nil {
			return protocol.Value{}, err
		}
		v := l + r
		if op == OpSub {
			v = l - r
		}
		return protocol.NumberValue(v, unit), nil
	case OpMul:
		if lu != "" && ru != "" {
			return protocol.Value{}, &RuntimeError{Pos: pos, Message: fmt.Sprintf("%s and %s: multiplying two numbers with units is not allowed", lu, ru)}
		}
		unit := lu
		if unit == "" {
			unit = ru
		}
		return protocol.NumberValue(l*r, unit), nil
	case OpDiv:
		if r == 0 {
			return protocol.Value{}, &RuntimeError{Pos: pos, Message: "division by zero"}
		}
		var unit string
		switch {
		case lu == ru:
			unit = ""
		case ru == "":
			unit = lu
		case lu == "":
			return protocol.Value{}, &RuntimeError{Pos: pos, Message: fmt.Sprintf("can't divide a unitless number by %s", ru)}
		default:
			return protocol.Value{}, &RuntimeError{Pos: pos, Message: fmt.Sprintf("%s and %s: incompatible units", lu, ru)}
		}
		return protocol.NumberValue(l/r, unit), nil
	default:
		return protocol.Value{}, &RuntimeError{Pos: pos, Message: "unknown operator"}
	}
}

func combineUnits(pos Position, lu, ru string) (string, error) {
	if lu == "" {
		return ru, nil
	}
	if ru == "" || ru == lu {
		return lu, nil
	}
	return "", &RuntimeError{Pos: pos, Message: fmt.Sprintf("%s and %s: incompatible units", lu, ru)}
}

// formatValue renders an evaluated Value as CSS text.
func formatValue(v protocol.Value) string {
	switch {
	case v.Number != nil:
		return formatNumber(*v.Number) + v.Unit
	case v.String != nil:
		return *v.String
	case v.Bool != nil:
		if *v.Bool {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

func formatNumber(n float64) string {
	s := fmt.Sprintf("%g", n)
	return s
}

// renderRule formats one rule's selector and declarations.
func renderRule(style OutputStyle, selector string, decls []string) string {
	if style == StyleCompressed {
		return selector + "{" + strings.Join(decls, ";") + "}"
	}
	if len(decls) == 0 {
		return selector + " {}"
	}
	return selector + " { " + strings.Join(decls, " ") + " }"
}

func renderDeclaration(style OutputStyle, property, value string) string {
	if style == StyleCompressed {
		return property + ":" + value
	}
	return property + ": " + value + ";"
}
