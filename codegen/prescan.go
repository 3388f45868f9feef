package codegen

import "github.com/vanarize/vanarize/ast"

// prescan walks a function body once before any code is emitted for it,
// reserving every named local's frame slot and every array/struct
// literal's anonymous temp slot up front. This lets the function
// prologue's SUB RSP, frameSize know the total frame size before a
// single statement has been lowered, instead of growing the frame
// mid-body.
func (c *Compiler) prescan(node ast.Node, fr *frame) {
	if node == nil {
		return
	}
	switch n := node.(type) {
	case *ast.Block:
		for _, s := range n.Statements {
			c.prescan(s, fr)
		}
	case *ast.VarDecl:
		fr.declare(n.Name)
		if !n.Type.IsArray && !isPrimitiveType(n.Type.Name) {
			fr.declareType(n.Name, n.Type.Name)
		}
		c.prescan(n.Initializer, fr)
	case *ast.IfStmt:
		c.prescan(n.Condition, fr)
		c.prescan(n.Then, fr)
		if n.Else != nil {
			c.prescan(n.Else, fr)
		}
	case *ast.ForStmt:
		c.prescan(n.Init, fr)
		c.prescan(n.Condition, fr)
		c.prescan(n.Increment, fr)
		c.prescan(n.Body, fr)
	case *ast.ReturnStmt:
		c.prescan(n.Value, fr)
	case *ast.PrintStmt:
		c.prescan(n.Value, fr)
	case *ast.ExprStmt:
		c.prescan(n.Expr, fr)
	case *ast.BinaryExpr:
		c.prescan(n.Left, fr)
		c.prescan(n.Right, fr)
	case *ast.UnaryExpr:
		c.prescan(n.Operand, fr)
	case *ast.CallExpr:
		c.prescan(n.Callee, fr)
		for _, a := range n.Args {
			c.prescan(a, fr)
		}
	case *ast.PropertyGet:
		c.prescan(n.Object, fr)
	case *ast.PropertySet:
		c.prescan(n.Object, fr)
		c.prescan(n.Value, fr)
	case *ast.IndexGet:
		c.prescan(n.Collection, fr)
		c.prescan(n.Index, fr)
	case *ast.IndexSet:
		c.prescan(n.Collection, fr)
		c.prescan(n.Index, fr)
		c.prescan(n.Value, fr)
	case *ast.Assignment:
		c.prescan(n.Value, fr)
	case *ast.AwaitExpr:
		c.prescan(n.Operand, fr)
	case *ast.ArrayLiteral:
		fr.declareTemp(n)
		for _, e := range n.Elements {
			c.prescan(e, fr)
		}
	case *ast.StructInit:
		fr.declareTemp(n)
		for _, f := range n.Fields {
			c.prescan(f.Value, fr)
		}
	default:
		// Number/String/Keyword/Identifier literals are leaves with
		// nothing to reserve.
	}
}
