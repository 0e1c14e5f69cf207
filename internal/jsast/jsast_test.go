package jsast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCallExpression(t *testing.T) {
	program, err := Parse([]byte(`require("./foo");`))
	require.NoError(t, err)
	require.Equal(t, KindProgram, program.Kind)
	require.Len(t, program.Children, 1)

	stmt := program.Children[0]
	require.Equal(t, KindExpressionStatement, stmt.Kind)
	require.Len(t, stmt.Children, 1)

	call := stmt.Children[0]
	require.Equal(t, KindCallExpression, call.Kind)
	require.NotNil(t, call.Callee)
	require.Equal(t, KindIdentifier, call.Callee.Kind)
	require.Equal(t, "require", call.Callee.Text)
	require.Len(t, call.Args, 1)
	require.Equal(t, KindStringLiteral, call.Args[0].Kind)
	require.Equal(t, "./foo", call.Args[0].Text)
}

func TestParseTemplateLiteralParts(t *testing.T) {
	program, err := Parse([]byte("const x = `./${name}.js`;"))
	require.NoError(t, err)

	decl := program.Children[0]
	require.Equal(t, KindVariableDeclaration, decl.Kind)
	declarator := decl.Children[0]
	require.Equal(t, KindVariableDeclarator, declarator.Kind)
	require.NotNil(t, declarator.Init)
	require.Equal(t, KindTemplateLiteral, declarator.Init.Kind)
	require.NotEmpty(t, declarator.Init.Parts)
}

func TestParseMemberExpressionSplitsObjectAndProperty(t *testing.T) {
	program, err := Parse([]byte(`require.resolve("./foo");`))
	require.NoError(t, err)

	call := program.Children[0].Children[0]
	require.Equal(t, KindCallExpression, call.Kind)
	require.NotNil(t, call.Callee)
	require.Equal(t, KindMemberExpression, call.Callee.Kind)
	require.NotNil(t, call.Callee.Callee)
	require.Equal(t, "require", call.Callee.Callee.Text)
	require.Len(t, call.Callee.Args, 1)
	require.Equal(t, "resolve", call.Callee.Args[0].Text)
}

func TestLeadingCommentCaptured(t *testing.T) {
	program, err := Parse([]byte("// turbopackIgnore\nrequire(dynamicPath);"))
	require.NoError(t, err)
	stmt := program.Children[0]
	call := stmt.Children[0]
	require.Contains(t, call.LeadingComment, "turbopackIgnore")
}

func TestWalkVisitsNestedCallArguments(t *testing.T) {
	program, err := Parse([]byte(`new URL(require("./a"), import.meta.url);`))
	require.NoError(t, err)

	var kinds []Kind
	Walk(program, func(n Node) bool {
		kinds = append(kinds, n.Kind)
		return true
	})
	require.Contains(t, kinds, KindNewExpression)
	require.Contains(t, kinds, KindCallExpression)
	require.Contains(t, kinds, KindMemberExpression)
}
