package ast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBinaryExprLine(t *testing.T) {
	left := NewNumberLiteral(1, 10)
	right := NewNumberLiteral(1, 20)
	expr := NewBinaryExpr(1, OpAdd, left, right)

	require.Equal(t, 1, expr.Line())
	require.Equal(t, OpAdd, expr.Op)
	require.Equal(t, float64(10), expr.Left.(*NumberLiteral).Value)
}

func TestBlockHoldsStatementsInOrder(t *testing.T) {
	block := NewBlock(3, []Node{
		NewExprStmt(3, NewIdentifierExpr(3, "a")),
		NewPrintStmt(4, NewIdentifierExpr(4, "a")),
	})

	require.Len(t, block.Statements, 2)
	require.IsType(t, &ExprStmt{}, block.Statements[0])
	require.IsType(t, &PrintStmt{}, block.Statements[1])
}

func TestFunctionDeclCarriesAsyncFlag(t *testing.T) {
	fn := NewFunctionDecl(1, "greet",
		[]Param{{Type: TypeRef{Name: "string"}, Name: "name"}},
		TypeRef{Name: "string"},
		NewBlock(1, nil),
		true,
	)

	require.True(t, fn.Async)
	require.Equal(t, "greet", fn.Name)
	require.Len(t, fn.Params, 1)
}

func TestStructDeclFields(t *testing.T) {
	decl := NewStructDecl(1, "Point", []StructField{
		{Type: TypeRef{Name: "int"}, Name: "x"},
		{Type: TypeRef{Name: "int"}, Name: "y"},
	})

	require.Equal(t, "Point", decl.Name)
	require.Equal(t, "x", decl.Fields[0].Name)
	require.Equal(t, "y", decl.Fields[1].Name)
}

func TestArrayTypeRef(t *testing.T) {
	typ := TypeRef{Name: "int", IsArray: true}
	decl := NewVarDecl(2, typ, "nums", nil)

	require.True(t, decl.Type.IsArray)
	require.Nil(t, decl.Initializer)
}

func TestProgramHoldsTopLevelDeclarations(t *testing.T) {
	prog := NewProgram([]Node{
		NewStructDecl(1, "Point", nil),
		NewFunctionDecl(2, "main", nil, TypeRef{Name: "int"}, NewBlock(2, nil), false),
	})

	require.Len(t, prog.Declarations, 2)
}
