package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vanarize/vanarize/ast"
)

func parseSource(t *testing.T, source string) *ast.Program {
	t.Helper()
	p := New(source, nil)
	prog, err := p.Parse()
	require.NoError(t, err)
	return prog
}

func TestParseSimpleArithmetic(t *testing.T) {
	prog := parseSource(t, "10 + 20 + 30;")
	require.Len(t, prog.Declarations, 1)

	stmt, ok := prog.Declarations[0].(*ast.ExprStmt)
	require.True(t, ok)

	outer, ok := stmt.Expr.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, ast.OpAdd, outer.Op)

	inner, ok := outer.Left.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, ast.OpAdd, inner.Op)
}

func TestParseVarDeclAndPrint(t *testing.T) {
	prog := parseSource(t, `int x = 10; int y = 20; print(x + y);`)
	require.Len(t, prog.Declarations, 3)

	xDecl, ok := prog.Declarations[0].(*ast.VarDecl)
	require.True(t, ok)
	require.Equal(t, "int", xDecl.Type.Name)
	require.Equal(t, "x", xDecl.Name)

	printStmt, ok := prog.Declarations[2].(*ast.PrintStmt)
	require.True(t, ok)
	require.IsType(t, &ast.BinaryExpr{}, printStmt.Value)
}

func TestParseFunctionDeclAndCall(t *testing.T) {
	prog := parseSource(t, `function add(int a, int b) :: int { return a + b; } var0 = add(10, 20);`)
	fn, ok := prog.Declarations[0].(*ast.FunctionDecl)
	require.True(t, ok)
	require.Equal(t, "add", fn.Name)
	require.Len(t, fn.Params, 2)
	require.Equal(t, "int", fn.ReturnType.Name)
	require.False(t, fn.Async)

	ret, ok := fn.Body.Statements[0].(*ast.ReturnStmt)
	require.True(t, ok)
	require.IsType(t, &ast.BinaryExpr{}, ret.Value)

	stmt, ok := prog.Declarations[1].(*ast.ExprStmt)
	require.True(t, ok)
	assign, ok := stmt.Expr.(*ast.Assignment)
	require.True(t, ok)
	call, ok := assign.Value.(*ast.CallExpr)
	require.True(t, ok)
	require.Len(t, call.Args, 2)
}

func TestParseStructDeclAndInit(t *testing.T) {
	prog := parseSource(t, `struct Point { int x int y } Point p = { x: 10, y: 20 }; print(p.x + p.y);`)
	decl, ok := prog.Declarations[0].(*ast.StructDecl)
	require.True(t, ok)
	require.Equal(t, "Point", decl.Name)
	require.Len(t, decl.Fields, 2)

	varDecl, ok := prog.Declarations[1].(*ast.VarDecl)
	require.True(t, ok)
	init, ok := varDecl.Initializer.(*ast.StructInit)
	require.True(t, ok)
	require.Equal(t, "Point", init.TypeName)
	require.Len(t, init.Fields, 2)

	printStmt, ok := prog.Declarations[2].(*ast.PrintStmt)
	require.True(t, ok)
	add, ok := printStmt.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	require.IsType(t, &ast.PropertyGet{}, add.Left)
}

func TestParseIfElseDanglingElse(t *testing.T) {
	prog := parseSource(t, `if (true) { print(1); } else { print(2); }`)
	ifStmt, ok := prog.Declarations[0].(*ast.IfStmt)
	require.True(t, ok)
	require.NotNil(t, ifStmt.Else)
	require.Len(t, ifStmt.Then.Statements, 1)
	require.Len(t, ifStmt.Else.Statements, 1)
}

func TestParseForLoop(t *testing.T) {
	prog := parseSource(t, `for (int i = 0; i < 3; i = i + 1) { print(i); }`)
	forStmt, ok := prog.Declarations[0].(*ast.ForStmt)
	require.True(t, ok)
	require.IsType(t, &ast.VarDecl{}, forStmt.Init)
	require.IsType(t, &ast.BinaryExpr{}, forStmt.Condition)
	require.IsType(t, &ast.Assignment{}, forStmt.Increment)
}

func TestParseAssignmentToIdentifier(t *testing.T) {
	prog := parseSource(t, `int x = 1; x = 2;`)
	stmt, ok := prog.Declarations[1].(*ast.ExprStmt)
	require.True(t, ok)
	assign, ok := stmt.Expr.(*ast.Assignment)
	require.True(t, ok)
	require.Equal(t, "x", assign.Name)
}

func TestParseInvalidAssignmentTargetFails(t *testing.T) {
	p := New(`(1+2) = 3;`, nil)
	_, err := p.Parse()
	require.Error(t, err)
	require.Contains(t, err.Error(), "Invalid assignment target")
}

func TestParseMissingExpressionFails(t *testing.T) {
	p := New(`10 + ;`, nil)
	_, err := p.Parse()
	require.Error(t, err)
	require.Contains(t, err.Error(), "Expect expression")
}

func TestParseArrayLiteral(t *testing.T) {
	prog := parseSource(t, `var0 = [1, 2, 3];`)
	stmt, ok := prog.Declarations[0].(*ast.ExprStmt)
	require.True(t, ok)
	assign, ok := stmt.Expr.(*ast.Assignment)
	require.True(t, ok)
	arr, ok := assign.Value.(*ast.ArrayLiteral)
	require.True(t, ok)
	require.Len(t, arr.Elements, 3)
}

type fakeReader struct{ sources map[string]string }

func (f fakeReader) ReadSource(path string) (string, error) { return f.sources[path], nil }

func TestParseImportRewritesFunctionNames(t *testing.T) {
	reader := fakeReader{sources: map[string]string{
		"math.vz": `function square(int n) :: int { return n * n; }`,
	}}
	p := New(`import "math.vz"; print(math_square(3));`, reader)
	prog, err := p.Parse()
	require.NoError(t, err)
	require.Len(t, prog.Declarations, 2)

	block, ok := prog.Declarations[0].(*ast.Block)
	require.True(t, ok)
	fn, ok := block.Statements[0].(*ast.FunctionDecl)
	require.True(t, ok)
	require.Equal(t, "math_square", fn.Name)
}
