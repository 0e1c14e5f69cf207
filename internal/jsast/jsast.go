// Package jsast is the minimal JS/TS syntax tree the effect extractor
// (internal/effect) and the evaluator (internal/evaluator) walk: not a full
// ECMAScript AST, just the handful of node shapes partial evaluation of
// require/import/new URL/new Worker call sites actually needs (spec §4.I's
// "Parser (external collaborator)" boundary, SPEC_FULL.md §5).
//
// Parsing itself is delegated to tree-sitter-typescript; this package lowers
// its concrete syntax tree into a small, stable Node sum type so the rest of
// the pipeline never touches a *tree_sitter.Node directly. Grounded on
// bennypowers-mappa/trace/queries.go's parser-pool + tree-sitter-typescript
// wiring, generalized from that file's query-capture extraction into a full
// recursive lowering pass since the effect extractor needs nested
// expression shapes (call arguments, member chains, template pieces) that a
// flat query can't conveniently express.
package jsast

import (
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tstypescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Kind discriminates Node (spec §4.H–I's "minimal AST" needs: literals,
// identifiers, the call/new/member shapes require/import/URL/Worker
// detection depends on, and just enough statement structure to find
// variable bindings and try/catch scopes).
type Kind uint8

const (
	KindProgram Kind = iota
	KindUnknown

	KindIdentifier
	KindStringLiteral
	KindNumberLiteral
	KindTemplateLiteral
	KindTemplateSubstitution
	KindArrayLiteral
	KindObjectLiteral
	KindProperty

	KindCallExpression
	KindNewExpression
	KindMemberExpression
	KindBinaryExpression
	KindLogicalExpression
	KindConditionalExpression
	KindAssignmentExpression
	KindSpreadElement
	KindArrowFunction
	KindFunctionExpression

	KindVariableDeclaration
	KindVariableDeclarator
	KindImportStatement
	KindImportExpression
	KindExpressionStatement
	KindTryStatement
	KindCatchClause
	KindReturnStatement
	KindBlock
)

// Node is one lowered syntax node. Only the fields relevant to Kind are
// populated.
type Node struct {
	Kind Kind
	Loc  Loc

	// Identifier / StringLiteral / NumberLiteral / raw text fallback
	Text string

	// CallExpression / NewExpression: Callee + Args
	// MemberExpression: Callee holds the object, Args[0] the property (as an
	// Identifier node) when not computed
	Computed bool
	Callee   *Node
	Args     []Node

	// BinaryExpression / LogicalExpression / AssignmentExpression: operator
	// text plus left/right operands
	Operator string
	Left     *Node
	Right    *Node

	// ConditionalExpression
	Test       *Node
	Consequent *Node
	Alternate  *Node

	// TemplateLiteral: ordered quasis (StringLiteral) and expressions (each
	// a TemplateSubstitution whose one child is the expression), interleaved
	// as Parts in source order
	Parts []Node

	// Program / Block / ArrayLiteral / ObjectLiteral children
	Children []Node

	// VariableDeclarator
	Name *Node
	Init *Node

	// TryStatement
	TryBlock   *Node
	CatchBlock *Node

	// Leading comment text immediately above this node, if any (spec §6
	// "turbopackIgnore"-style annotations; see internal/ast.ImportAnnotations).
	LeadingComment string
}

// Loc is a byte/line/column position, independent of internal/logger.Loc so
// this package has no dependency on the bundler-oriented logger types.
type Loc struct {
	StartByte, EndByte     uint32
	StartLine, StartColumn uint32
}

var tsLanguage = sitter.NewLanguage(tstypescript.LanguageTypescript())

var parserPool = sync.Pool{
	New: func() any {
		p := sitter.NewParser()
		if err := p.SetLanguage(tsLanguage); err != nil {
			panic("jsast: failed to set TypeScript language: " + err.Error())
		}
		return p
	},
}

// Parse lowers TypeScript/JavaScript source into a Program Node.
func Parse(source []byte) (Node, error) {
	parser := parserPool.Get().(*sitter.Parser)
	defer func() {
		parser.Reset()
		parserPool.Put(parser)
	}()

	tree := parser.Parse(source, nil)
	if tree == nil {
		return Node{}, errParse{}
	}
	defer tree.Close()

	root := tree.RootNode()
	return lower(root, source), nil
}

type errParse struct{}

func (errParse) Error() string { return "jsast: failed to parse source" }

func loc(n *sitter.Node) Loc {
	start := n.StartPosition()
	return Loc{
		StartByte:   n.StartByte(),
		EndByte:     n.EndByte(),
		StartLine:   start.Row,
		StartColumn: start.Column,
	}
}

// lower dispatches on the tree-sitter node's grammar kind and builds the
// corresponding Node. Grammar shapes this pass doesn't recognize collapse to
// KindUnknown with their raw text preserved, so the effect extractor can
// still report "this is something, but not one we understand" rather than
// silently losing the node.
func lower(n *sitter.Node, src []byte) Node {
	base := Node{Loc: loc(n), Text: n.Utf8Text(src), LeadingComment: leadingComment(n, src)}

	switch n.Kind() {
	case "program":
		base.Kind = KindProgram
		base.Children = lowerNamedChildren(n, src)
	case "identifier", "property_identifier", "shorthand_property_identifier", "this":
		base.Kind = KindIdentifier
	case "string", "string_fragment":
		base.Kind = KindStringLiteral
		base.Text = unquote(base.Text)
	case "number":
		base.Kind = KindNumberLiteral
	case "template_string":
		base.Kind = KindTemplateLiteral
		base.Parts = lowerNamedChildren(n, src)
	case "template_substitution":
		base.Kind = KindTemplateSubstitution
		if inner := firstNamedChild(n); inner != nil {
			sub := lower(inner, src)
			base.Children = []Node{sub}
		}
	case "array":
		base.Kind = KindArrayLiteral
		base.Children = lowerNamedChildren(n, src)
	case "object":
		base.Kind = KindObjectLiteral
		base.Children = lowerNamedChildren(n, src)
	case "pair":
		base.Kind = KindProperty
		if key := n.ChildByFieldName("key"); key != nil {
			k := lower(key, src)
			base.Name = &k
		}
		if value := n.ChildByFieldName("value"); value != nil {
			v := lower(value, src)
			base.Init = &v
		}
	case "call_expression":
		base.Kind = KindCallExpression
		lowerCallLike(n, src, &base)
	case "new_expression":
		base.Kind = KindNewExpression
		lowerCallLike(n, src, &base)
	case "member_expression", "subscript_expression":
		base.Kind = KindMemberExpression
		if obj := n.ChildByFieldName("object"); obj != nil {
			callee := lower(obj, src)
			base.Callee = &callee
		}
		if prop := n.ChildByFieldName("property"); prop != nil {
			p := lower(prop, src)
			base.Args = []Node{p}
		} else if idx := n.ChildByFieldName("index"); idx != nil {
			p := lower(idx, src)
			base.Args = []Node{p}
			base.Computed = true
		}
	case "binary_expression":
		base.Kind = KindBinaryExpression
		lowerBinaryLike(n, src, &base)
	case "logical_expression":
		base.Kind = KindLogicalExpression
		lowerBinaryLike(n, src, &base)
	case "ternary_expression":
		base.Kind = KindConditionalExpression
		if c := n.ChildByFieldName("condition"); c != nil {
			t := lower(c, src)
			base.Test = &t
		}
		if c := n.ChildByFieldName("consequence"); c != nil {
			t := lower(c, src)
			base.Consequent = &t
		}
		if c := n.ChildByFieldName("alternative"); c != nil {
			t := lower(c, src)
			base.Alternate = &t
		}
	case "assignment_expression":
		base.Kind = KindAssignmentExpression
		lowerBinaryLike(n, src, &base)
	case "spread_element":
		base.Kind = KindSpreadElement
		if inner := firstNamedChild(n); inner != nil {
			v := lower(inner, src)
			base.Children = []Node{v}
		}
	case "arrow_function":
		base.Kind = KindArrowFunction
		base.Children = lowerFunctionBody(n, src)
	case "function_expression", "function_declaration":
		base.Kind = KindFunctionExpression
		base.Children = lowerFunctionBody(n, src)
	case "variable_declaration", "lexical_declaration":
		base.Kind = KindVariableDeclaration
		base.Children = lowerNamedChildren(n, src)
	case "variable_declarator":
		base.Kind = KindVariableDeclarator
		if name := n.ChildByFieldName("name"); name != nil {
			nm := lower(name, src)
			base.Name = &nm
		}
		if value := n.ChildByFieldName("value"); value != nil {
			v := lower(value, src)
			base.Init = &v
		}
	case "import_statement":
		base.Kind = KindImportStatement
		base.Children = lowerNamedChildren(n, src)
	case "import", "call_expression_import":
		base.Kind = KindImportExpression
	case "expression_statement":
		base.Kind = KindExpressionStatement
		if inner := firstNamedChild(n); inner != nil {
			v := lower(inner, src)
			// A directive comment immediately above the statement reads as
			// belonging to its sole expression too (tree-sitter attaches the
			// comment as the statement's sibling, not the inner expression's).
			if v.LeadingComment == "" {
				v.LeadingComment = base.LeadingComment
			}
			base.Children = []Node{v}
		}
	case "try_statement":
		base.Kind = KindTryStatement
		if body := n.ChildByFieldName("body"); body != nil {
			b := lower(body, src)
			base.TryBlock = &b
		}
		if handler := n.ChildByFieldName("handler"); handler != nil {
			h := lower(handler, src)
			base.CatchBlock = &h
		}
	case "catch_clause":
		base.Kind = KindCatchClause
		base.Children = lowerNamedChildren(n, src)
	case "return_statement":
		base.Kind = KindReturnStatement
		if inner := firstNamedChild(n); inner != nil {
			v := lower(inner, src)
			base.Children = []Node{v}
		}
	case "statement_block":
		base.Kind = KindBlock
		base.Children = lowerNamedChildren(n, src)
	default:
		base.Kind = KindUnknown
		base.Children = lowerNamedChildren(n, src)
	}
	return base
}

func lowerCallLike(n *sitter.Node, src []byte, base *Node) {
	if fn := n.ChildByFieldName("function"); fn != nil {
		callee := lower(fn, src)
		base.Callee = &callee
	} else if fn := n.ChildByFieldName("constructor"); fn != nil {
		callee := lower(fn, src)
		base.Callee = &callee
	}
	if args := n.ChildByFieldName("arguments"); args != nil {
		base.Args = lowerNamedChildren(args, src)
	}
}

func lowerBinaryLike(n *sitter.Node, src []byte, base *Node) {
	if l := n.ChildByFieldName("left"); l != nil {
		left := lower(l, src)
		base.Left = &left
	}
	if op := n.ChildByFieldName("operator"); op != nil {
		base.Operator = op.Utf8Text(src)
	}
	if r := n.ChildByFieldName("right"); r != nil {
		right := lower(r, src)
		base.Right = &right
	}
}

func lowerFunctionBody(n *sitter.Node, src []byte) []Node {
	if body := n.ChildByFieldName("body"); body != nil {
		return []Node{lower(body, src)}
	}
	return nil
}

func lowerNamedChildren(n *sitter.Node, src []byte) []Node {
	count := int(n.NamedChildCount())
	out := make([]Node, 0, count)
	for i := 0; i < count; i++ {
		child := n.NamedChild(uint(i))
		if child == nil {
			continue
		}
		out = append(out, lower(child, src))
	}
	return out
}

func firstNamedChild(n *sitter.Node) *sitter.Node {
	if n.NamedChildCount() == 0 {
		return nil
	}
	return n.NamedChild(0)
}

// leadingComment returns the text of a "comment"-kinded previous sibling
// immediately before n, used to detect "// turbopackIgnore"-style
// directives (SPEC_FULL.md §6).
func leadingComment(n *sitter.Node, src []byte) string {
	prev := n.PrevSibling()
	if prev == nil || prev.Kind() != "comment" {
		return ""
	}
	return prev.Utf8Text(src)
}

func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'' || first == '`') && first == last {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// Walk calls visit for n and every descendant it directly holds, depth
// first. visit returning false skips that subtree's children (but Walk
// still visits n's siblings at the call site, if any — callers iterating
// Children handle that themselves).
func Walk(n Node, visit func(Node) bool) {
	if !visit(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, visit)
	}
	for _, a := range n.Args {
		Walk(a, visit)
	}
	for _, p := range n.Parts {
		Walk(p, visit)
	}
	if n.Callee != nil {
		Walk(*n.Callee, visit)
	}
	if n.Left != nil {
		Walk(*n.Left, visit)
	}
	if n.Right != nil {
		Walk(*n.Right, visit)
	}
	if n.Test != nil {
		Walk(*n.Test, visit)
	}
	if n.Consequent != nil {
		Walk(*n.Consequent, visit)
	}
	if n.Alternate != nil {
		Walk(*n.Alternate, visit)
	}
	if n.Name != nil {
		Walk(*n.Name, visit)
	}
	if n.Init != nil {
		Walk(*n.Init, visit)
	}
	if n.TryBlock != nil {
		Walk(*n.TryBlock, visit)
	}
	if n.CatchBlock != nil {
		Walk(*n.CatchBlock, visit)
	}
}
