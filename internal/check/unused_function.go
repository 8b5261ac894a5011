package check

import (
	"fmt"
	"slices"

	sitter "github.com/smacker/go-tree-sitter"

	"sift/internal/diag"
)

// UnusedFunction reports functions that no analyzed file refers to.
type UnusedFunction struct{}

func (UnusedFunction) Name() string            { return "unusedFunction" }
func (UnusedFunction) Severity() diag.Severity { return diag.SevStyle }

// entryPoints are never reported.
var entryPoints = []string{"main", "wmain", "WinMain", "_tmain", "DllMain"}

func (UnusedFunction) Collect(u *Unit, f *Facts) {
	declNames := make(map[uint32]bool)
	walk(u.Root(), func(n *sitter.Node) bool {
		switch n.Type() {
		case "function_definition":
			nameNode, exempt := declaratorName(u, n.ChildByFieldName("declarator"))
			if nameNode == nil {
				return true
			}
			declNames[nameNode.StartByte()] = true
			name := u.Text(nameNode)
			if exempt || slices.Contains(entryPoints, name) {
				return true
			}
			line, _ := Position(nameNode)
			f.Functions = append(f.Functions, FuncDef{Name: name, Line: line})
		case "declaration", "field_declaration":
			// prototypes do not count as uses
			for i := 0; i < int(n.NamedChildCount()); i++ {
				child := n.NamedChild(i)
				if child.Type() != "function_declarator" {
					continue
				}
				if nameNode, _ := declaratorName(u, child); nameNode != nil {
					declNames[nameNode.StartByte()] = true
				}
			}
		}
		return true
	})

	seen := make(map[string]bool)
	walk(u.Root(), func(n *sitter.Node) bool {
		switch n.Type() {
		case "identifier", "field_identifier":
			if !declNames[n.StartByte()] {
				seen[u.Text(n)] = true
			}
		}
		return true
	})
	f.Uses = sortedKeys(seen)
}

// declaratorName finds the identifier a declarator declares. exempt is set
// for constructors, destructors and operators.
func declaratorName(u *Unit, n *sitter.Node) (name *sitter.Node, exempt bool) {
	for n != nil {
		switch n.Type() {
		case "identifier", "field_identifier":
			return n, exempt
		case "destructor_name", "operator_name", "operator_cast":
			return nil, true
		case "qualified_identifier":
			scope := n.ChildByFieldName("scope")
			inner := n.ChildByFieldName("name")
			if scope != nil && inner != nil && u.Text(scope) == u.Text(inner) {
				exempt = true
			}
			n = inner
		case "template_function":
			n = n.ChildByFieldName("name")
		default:
			next := n.ChildByFieldName("declarator")
			if next == nil && n.NamedChildCount() > 0 {
				next = n.NamedChild(int(n.NamedChildCount()) - 1)
			}
			n = next
		}
	}
	return nil, exempt
}

func (c UnusedFunction) Resolve(files []FileFacts, r diag.Reporter) {
	used := make(map[string]bool)
	for _, ff := range files {
		for _, name := range ff.Facts.Uses {
			used[name] = true
		}
	}
	for _, ff := range files {
		for _, fn := range ff.Facts.Functions {
			if used[fn.Name] {
				continue
			}
			d := diag.New(c.Severity(), c.Name(), ff.File, fn.Line, 0,
				fmt.Sprintf("The function '%s' is never used.", fn.Name))
			r.Report(d.WithSymbol(fn.Name))
		}
	}
}
