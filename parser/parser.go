// Package parser implements the recursive-descent parser of spec.md §4.2:
// one token of lookahead (current, next) plus a shadow previous for
// lexeme capture after a token is consumed, producing the typed AST the
// code generator lowers. Any syntactic violation returns an *Error and
// parsing stops — there is no error recovery.
package parser

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vanarize/vanarize/ast"
	"github.com/vanarize/vanarize/lexer"
)

// SourceReader resolves an import path (spec.md §6) to file contents.
// File I/O is an external collaborator (spec.md §1); the parser only
// consumes this narrow interface so it stays testable without a real
// filesystem.
type SourceReader interface {
	ReadSource(path string) (string, error)
}

// Parser holds the process-wide mutable scanning state spec.md §9
// describes: one Parser per compilation, owning its Lexer.
type Parser struct {
	lex      *lexer.Lexer
	reader   SourceReader
	current  lexer.Token
	next     lexer.Token
	previous lexer.Token
	prefix   string // namespace prefix; "" outside an import
}

// New creates a Parser over source. reader may be nil if the program is
// known not to use import declarations.
func New(source string, reader SourceReader) *Parser {
	l := lexer.New(source)
	p := &Parser{lex: l, reader: reader}
	p.current = l.Next()
	p.next = l.Next()
	return p
}

func (p *Parser) advance() {
	p.previous = p.current
	p.current = p.next
	p.next = p.lex.Next()
}

func (p *Parser) check(t lexer.TokenType) bool { return p.current.Type == t }

func (p *Parser) match(t lexer.TokenType) bool {
	if !p.check(t) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) consume(t lexer.TokenType, message string) (lexer.Token, error) {
	if p.check(t) {
		tok := p.current
		p.advance()
		return tok, nil
	}
	if p.current.Type == lexer.TokenError {
		return lexer.Token{}, newError(p.current.Line, "%s", p.current.Lexeme)
	}
	return lexer.Token{}, newError(p.current.Line, message)
}

// Parse runs the parser to EOF, returning the program's top-level
// declarations.
func (p *Parser) Parse() (*ast.Program, error) {
	var decls []ast.Node
	for !p.check(lexer.TokenEOF) {
		d, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
	return ast.NewProgram(decls), nil
}

// isTypedVarDeclStart implements spec.md §4.2's tie-break: a primitive
// type keyword always starts a typed declaration; an identifier starts
// one only when followed by a second identifier (struct typing). `IDENT
// [` is left to the statement/expression path as an index access.
func (p *Parser) isTypedVarDeclStart() bool {
	if lexer.IsTypeKeyword(p.current.Type) {
		return true
	}
	return p.current.Type == lexer.TokenIdentifier && p.next.Type == lexer.TokenIdentifier
}

func (p *Parser) parseDeclaration() (ast.Node, error) {
	switch {
	case p.check(lexer.TokenImport):
		return p.parseImport()
	case p.check(lexer.TokenStruct):
		return p.parseStructDecl()
	case p.check(lexer.TokenAsync), p.check(lexer.TokenFunction):
		return p.parseFunctionDecl()
	case p.isTypedVarDeclStart():
		decl, err := p.parseVarDeclCore()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.TokenSemicolon, "Expect ';' after variable declaration."); err != nil {
			return nil, err
		}
		return decl, nil
	default:
		return p.parseStatement()
	}
}

func (p *Parser) parseTypeRef() (ast.TypeRef, error) {
	var name string
	if lexer.IsTypeKeyword(p.current.Type) {
		name = p.current.Lexeme
		p.advance()
	} else if p.current.Type == lexer.TokenIdentifier {
		name = p.current.Lexeme
		p.advance()
	} else {
		return ast.TypeRef{}, newError(p.current.Line, "Expect type.")
	}

	isArray := false
	if p.check(lexer.TokenLBracket) && p.next.Type == lexer.TokenRBracket {
		p.advance()
		p.advance()
		isArray = true
	}
	return ast.TypeRef{Name: name, IsArray: isArray}, nil
}

// parseVarDeclCore parses `<type> <name> [= expr]` without the
// terminating semicolon, shared between declaration-statement and
// for-loop-initializer contexts.
func (p *Parser) parseVarDeclCore() (*ast.VarDecl, error) {
	line := p.current.Line
	typ, err := p.parseTypeRef()
	if err != nil {
		return nil, err
	}
	nameTok, err := p.consume(lexer.TokenIdentifier, "Expect variable name.")
	if err != nil {
		return nil, err
	}

	var init ast.Node
	if p.match(lexer.TokenEqual) {
		init, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
		if si, ok := init.(*ast.StructInit); ok && si.TypeName == "" && !typ.IsArray {
			si.TypeName = typ.Name
		}
	}
	return ast.NewVarDecl(line, typ, nameTok.Lexeme, init), nil
}

func (p *Parser) parseStructDecl() (ast.Node, error) {
	line := p.current.Line
	if _, err := p.consume(lexer.TokenStruct, "Expect 'struct'."); err != nil {
		return nil, err
	}
	nameTok, err := p.consume(lexer.TokenIdentifier, "Expect struct name.")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenLBrace, "Expect '{' before struct body."); err != nil {
		return nil, err
	}

	var fields []ast.StructField
	for !p.check(lexer.TokenRBrace) && !p.check(lexer.TokenEOF) {
		typ, err := p.parseTypeRef()
		if err != nil {
			return nil, err
		}
		fnameTok, err := p.consume(lexer.TokenIdentifier, "Expect field name.")
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.StructField{Type: typ, Name: fnameTok.Lexeme})
	}
	if _, err := p.consume(lexer.TokenRBrace, "Expect '}' after struct body."); err != nil {
		return nil, err
	}
	return ast.NewStructDecl(line, nameTok.Lexeme, fields), nil
}

func (p *Parser) parseFunctionDecl() (ast.Node, error) {
	line := p.current.Line
	async := p.match(lexer.TokenAsync)
	if _, err := p.consume(lexer.TokenFunction, "Expect 'function'."); err != nil {
		return nil, err
	}
	nameTok, err := p.consume(lexer.TokenIdentifier, "Expect function name.")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenLParen, "Expect '(' after function name."); err != nil {
		return nil, err
	}

	var params []ast.Param
	for !p.check(lexer.TokenRParen) {
		typ, err := p.parseTypeRef()
		if err != nil {
			return nil, err
		}
		pnameTok, err := p.consume(lexer.TokenIdentifier, "Expect parameter name.")
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Type: typ, Name: pnameTok.Lexeme})
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	if _, err := p.consume(lexer.TokenRParen, "Expect ')' after parameters."); err != nil {
		return nil, err
	}

	var retType ast.TypeRef
	if p.match(lexer.TokenColonColon) {
		retType, err = p.parseTypeRef()
		if err != nil {
			return nil, err
		}
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	name := nameTok.Lexeme
	if p.prefix != "" {
		name = p.prefix + "_" + name
	}
	return ast.NewFunctionDecl(line, name, params, retType, body, async), nil
}

// parseImport snapshots lexer and parser state, runs a nested parse of
// the referenced file to EOF under a derived namespace prefix, then
// restores both states (spec.md §4.2).
func (p *Parser) parseImport() (ast.Node, error) {
	line := p.current.Line
	if _, err := p.consume(lexer.TokenImport, "Expect 'import'."); err != nil {
		return nil, err
	}
	pathTok, err := p.consume(lexer.TokenString, "Expect import path string.")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenSemicolon, "Expect ';' after import path."); err != nil {
		return nil, err
	}

	if p.reader == nil {
		return nil, newError(line, "Import not supported in this context.")
	}
	src, err := p.reader.ReadSource(pathTok.Lexeme)
	if err != nil {
		return nil, newError(line, "Cannot read imported file %q: %v", pathTok.Lexeme, err)
	}

	base := filepath.Base(pathTok.Lexeme)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	savedCheckpoint := p.lex.Save()
	savedCurrent, savedNext, savedPrevious := p.current, p.next, p.previous
	savedPrefix := p.prefix

	p.lex.SwitchSource(src)
	p.prefix = base
	p.current = p.lex.Next()
	p.next = p.lex.Next()

	var decls []ast.Node
	for !p.check(lexer.TokenEOF) {
		d, declErr := p.parseDeclaration()
		if declErr != nil {
			err = declErr
			break
		}
		decls = append(decls, d)
	}

	p.lex.Restore(savedCheckpoint)
	p.current, p.next, p.previous = savedCurrent, savedNext, savedPrevious
	p.prefix = savedPrefix

	if err != nil {
		return nil, err
	}
	return ast.NewBlock(line, decls), nil
}

func (p *Parser) parseStatement() (ast.Node, error) {
	switch {
	case p.match(lexer.TokenReturn):
		return p.parseReturnStmt()
	case p.check(lexer.TokenIf):
		return p.parseIfStmt()
	case p.check(lexer.TokenFor):
		return p.parseForStmt()
	case p.check(lexer.TokenPrint):
		return p.parsePrintStmt()
	case p.check(lexer.TokenLBrace):
		return p.parseBlock()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseReturnStmt() (ast.Node, error) {
	line := p.previous.Line
	var value ast.Node
	if !p.check(lexer.TokenSemicolon) {
		var err error
		value, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(lexer.TokenSemicolon, "Expect ';' after return value."); err != nil {
		return nil, err
	}
	return ast.NewReturnStmt(line, value), nil
}

func (p *Parser) parsePrintStmt() (ast.Node, error) {
	line := p.current.Line
	if _, err := p.consume(lexer.TokenPrint, "Expect 'print'."); err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenLParen, "Expect '(' after 'print'."); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenRParen, "Expect ')' after print argument."); err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenSemicolon, "Expect ';' after print statement."); err != nil {
		return nil, err
	}
	return ast.NewPrintStmt(line, value), nil
}

// parseIfStmt handles dangling else by attaching it to the innermost
// call, which is simply recursive descent's default behaviour here
// (spec.md §4.2).
func (p *Parser) parseIfStmt() (ast.Node, error) {
	line := p.current.Line
	if _, err := p.consume(lexer.TokenIf, "Expect 'if'."); err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenLParen, "Expect '(' after 'if'."); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenRParen, "Expect ')' after if condition."); err != nil {
		return nil, err
	}
	thenBlock, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	var elseBlock *ast.Block
	if p.match(lexer.TokenElse) {
		if p.check(lexer.TokenIf) {
			nested, err := p.parseIfStmt()
			if err != nil {
				return nil, err
			}
			elseBlock = ast.NewBlock(nested.Line(), []ast.Node{nested})
		} else {
			elseBlock, err = p.parseBlock()
			if err != nil {
				return nil, err
			}
		}
	}
	return ast.NewIfStmt(line, cond, thenBlock, elseBlock), nil
}

func (p *Parser) parseForStmt() (ast.Node, error) {
	line := p.current.Line
	if _, err := p.consume(lexer.TokenFor, "Expect 'for'."); err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenLParen, "Expect '(' after 'for'."); err != nil {
		return nil, err
	}

	var init ast.Node
	if !p.check(lexer.TokenSemicolon) {
		var err error
		if p.isTypedVarDeclStart() {
			init, err = p.parseVarDeclCore()
		} else {
			init, err = p.parseExpressionAsStmt()
		}
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(lexer.TokenSemicolon, "Expect ';' after for-initializer."); err != nil {
		return nil, err
	}

	var cond ast.Node
	if !p.check(lexer.TokenSemicolon) {
		var err error
		cond, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(lexer.TokenSemicolon, "Expect ';' after for-condition."); err != nil {
		return nil, err
	}

	var inc ast.Node
	if !p.check(lexer.TokenRParen) {
		var err error
		inc, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(lexer.TokenRParen, "Expect ')' after for-clauses."); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewForStmt(line, init, cond, inc, body), nil
}

func (p *Parser) parseBlock() (*ast.Block, error) {
	line := p.current.Line
	if _, err := p.consume(lexer.TokenLBrace, "Expect '{'."); err != nil {
		return nil, err
	}
	var stmts []ast.Node
	for !p.check(lexer.TokenRBrace) && !p.check(lexer.TokenEOF) {
		d, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, d)
	}
	if _, err := p.consume(lexer.TokenRBrace, "Expect '}' after block."); err != nil {
		return nil, err
	}
	return ast.NewBlock(line, stmts), nil
}

func (p *Parser) parseExprStmt() (ast.Node, error) {
	line := p.current.Line
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenSemicolon, "Expect ';' after expression."); err != nil {
		return nil, err
	}
	return ast.NewExprStmt(line, expr), nil
}

// parseExpressionAsStmt is used for the for-loop initializer clause,
// which has no terminating semicolon of its own (the loop's own `;`
// clause separators serve that role).
func (p *Parser) parseExpressionAsStmt() (ast.Node, error) {
	line := p.current.Line
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return ast.NewExprStmt(line, expr), nil
}

func (p *Parser) parseExpression() (ast.Node, error) { return p.parseAssignment() }

// parseAssignment implements the tie-break and rewrite rules of
// spec.md §4.2: right-associative, legal only when the already-parsed
// LHS is an identifier, property-get, or index-get.
func (p *Parser) parseAssignment() (ast.Node, error) {
	expr, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	if !p.match(lexer.TokenEqual) {
		return expr, nil
	}
	line := p.previous.Line
	value, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}

	switch e := expr.(type) {
	case *ast.IdentifierExpr:
		return ast.NewAssignment(line, e.Name, value), nil
	case *ast.PropertyGet:
		return ast.NewPropertySet(line, e.Object, e.Name, value), nil
	case *ast.IndexGet:
		return ast.NewIndexSet(line, e.Collection, e.Index, value), nil
	default:
		return nil, newError(line, "Invalid assignment target.")
	}
}

func (p *Parser) parseEquality() (ast.Node, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOp
		switch {
		case p.check(lexer.TokenEqualEqual):
			op = ast.OpEqual
		case p.check(lexer.TokenBangEqual):
			op = ast.OpNotEqual
		default:
			return left, nil
		}
		line := p.current.Line
		p.advance()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryExpr(line, op, left, right)
	}
}

func (p *Parser) parseComparison() (ast.Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOp
		switch {
		case p.check(lexer.TokenLess):
			op = ast.OpLess
		case p.check(lexer.TokenLessEqual):
			op = ast.OpLessEqual
		case p.check(lexer.TokenGreater):
			op = ast.OpGreater
		case p.check(lexer.TokenGreaterEqual):
			op = ast.OpGreaterEqual
		default:
			return left, nil
		}
		line := p.current.Line
		p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryExpr(line, op, left, right)
	}
}

func (p *Parser) parseTerm() (ast.Node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOp
		switch {
		case p.check(lexer.TokenPlus):
			op = ast.OpAdd
		case p.check(lexer.TokenMinus):
			op = ast.OpSub
		default:
			return left, nil
		}
		line := p.current.Line
		p.advance()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryExpr(line, op, left, right)
	}
}

func (p *Parser) parseFactor() (ast.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOp
		switch {
		case p.check(lexer.TokenStar):
			op = ast.OpMul
		case p.check(lexer.TokenSlash):
			op = ast.OpDiv
		default:
			return left, nil
		}
		line := p.current.Line
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryExpr(line, op, left, right)
	}
}

func (p *Parser) parseUnary() (ast.Node, error) {
	switch {
	case p.check(lexer.TokenBang):
		line := p.current.Line
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryExpr(line, ast.OpNot, operand), nil
	case p.check(lexer.TokenMinus):
		line := p.current.Line
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryExpr(line, ast.OpNegate, operand), nil
	case p.check(lexer.TokenAwait):
		line := p.current.Line
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewAwaitExpr(line, operand), nil
	default:
		return p.parseCall()
	}
}

func (p *Parser) parseCall() (ast.Node, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.match(lexer.TokenLParen):
			line := p.previous.Line
			var args []ast.Node
			for !p.check(lexer.TokenRParen) {
				arg, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if !p.match(lexer.TokenComma) {
					break
				}
			}
			if _, err := p.consume(lexer.TokenRParen, "Expect ')' after arguments."); err != nil {
				return nil, err
			}
			expr = ast.NewCallExpr(line, expr, args)
		case p.match(lexer.TokenDot):
			line := p.previous.Line
			nameTok, err := p.consume(lexer.TokenIdentifier, "Expect property name after '.'.")
			if err != nil {
				return nil, err
			}
			expr = ast.NewPropertyGet(line, expr, nameTok.Lexeme)
		case p.match(lexer.TokenLBracket):
			line := p.previous.Line
			idx, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(lexer.TokenRBracket, "Expect ']' after index."); err != nil {
				return nil, err
			}
			expr = ast.NewIndexGet(line, expr, idx)
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Node, error) {
	line := p.current.Line
	switch {
	case p.match(lexer.TokenNumber):
		v, err := strconv.ParseFloat(p.previous.Lexeme, 64)
		if err != nil {
			return nil, newError(line, "Invalid number literal %q.", p.previous.Lexeme)
		}
		return ast.NewNumberLiteral(line, v), nil
	case p.match(lexer.TokenString):
		return ast.NewStringLiteral(line, p.previous.Lexeme), nil
	case p.match(lexer.TokenTrue):
		return ast.NewKeywordLiteral(line, ast.KeywordTrue), nil
	case p.match(lexer.TokenFalse):
		return ast.NewKeywordLiteral(line, ast.KeywordFalse), nil
	case p.match(lexer.TokenNil):
		return ast.NewKeywordLiteral(line, ast.KeywordNil), nil
	case p.match(lexer.TokenIdentifier):
		return ast.NewIdentifierExpr(line, p.previous.Lexeme), nil
	case p.match(lexer.TokenLParen):
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.TokenRParen, "Expect ')' after expression."); err != nil {
			return nil, err
		}
		return expr, nil
	case p.match(lexer.TokenLBracket):
		return p.parseArrayLiteral(line)
	case p.match(lexer.TokenLBrace):
		return p.parseStructInitBody(line)
	default:
		if p.current.Type == lexer.TokenError {
			return nil, newError(p.current.Line, "%s", p.current.Lexeme)
		}
		return nil, newError(line, "Expect expression.")
	}
}

func (p *Parser) parseArrayLiteral(line int) (ast.Node, error) {
	var elements []ast.Node
	for !p.check(lexer.TokenRBracket) {
		el, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	if _, err := p.consume(lexer.TokenRBracket, "Expect ']' after array elements."); err != nil {
		return nil, err
	}
	return ast.NewArrayLiteral(line, elements), nil
}

// parseStructInitBody parses `{ field: expr, ... }`. The struct's type
// name is unknown here — it is resolved by the enclosing typed variable
// declaration (spec.md §6's `<Name> v = { field: expr, … };` form).
func (p *Parser) parseStructInitBody(line int) (ast.Node, error) {
	var fields []ast.StructInitField
	for !p.check(lexer.TokenRBrace) {
		fnameTok, err := p.consume(lexer.TokenIdentifier, "Expect field name.")
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.TokenColon, "Expect ':' after field name."); err != nil {
			return nil, err
		}
		fval, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.StructInitField{Name: fnameTok.Lexeme, Value: fval})
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	if _, err := p.consume(lexer.TokenRBrace, "Expect '}' after struct literal."); err != nil {
		return nil, err
	}
	return ast.NewStructInit(line, "", fields), nil
}
