package check

import (
	"context"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"sift/internal/diag"
)

// ZeroDiv reports integer division or modulo by a literal zero.
type ZeroDiv struct{}

func (ZeroDiv) Name() string            { return "zerodiv" }
func (ZeroDiv) Severity() diag.Severity { return diag.SevError }

func (z ZeroDiv) Run(ctx context.Context, u *Unit, r diag.Reporter) error {
	walk(u.Root(), func(n *sitter.Node) bool {
		switch n.Type() {
		case "binary_expression", "assignment_expression":
		default:
			return true
		}
		op := n.ChildByFieldName("operator")
		if op == nil {
			return true
		}
		switch op.Type() {
		case "/", "%", "/=", "%=":
		default:
			return true
		}
		if isZeroLiteral(u, n.ChildByFieldName("right")) {
			line, col := Position(op)
			r.Report(diag.New(z.Severity(), z.Name(), u.File.Path, line, col, "Division by zero."))
		}
		return true
	})
	return ctx.Err()
}

func isZeroLiteral(u *Unit, n *sitter.Node) bool {
	for n != nil && n.Type() == "parenthesized_expression" && n.NamedChildCount() == 1 {
		n = n.NamedChild(0)
	}
	if n == nil || n.Type() != "number_literal" {
		return false
	}
	text := strings.ToLower(strings.ReplaceAll(u.Text(n), "'", ""))
	text = strings.TrimRight(text, "ul")
	if strings.ContainsAny(text, ".") || (strings.Contains(text, "e") && !strings.HasPrefix(text, "0x")) {
		// floating point
		return false
	}
	v, err := strconv.ParseUint(text, 0, 64)
	return err == nil && v == 0
}
