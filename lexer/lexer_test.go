package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func collectTypes(source string) []TokenType {
	l := New(source)
	var types []TokenType
	for {
		tok := l.Next()
		types = append(types, tok.Type)
		if tok.Type == TokenEOF {
			break
		}
	}
	return types
}

func TestSimpleExpression(t *testing.T) {
	types := collectTypes("10 + 20 + 30")
	require.Equal(t, []TokenType{
		TokenNumber, TokenPlus, TokenNumber, TokenPlus, TokenNumber, TokenEOF,
	}, types)
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	l := New("int x = 10;")
	require.Equal(t, TokenTypeInt, l.Next().Type)
	ident := l.Next()
	require.Equal(t, TokenIdentifier, ident.Type)
	require.Equal(t, "x", ident.Lexeme)
	require.Equal(t, TokenEqual, l.Next().Type)
	require.Equal(t, TokenNumber, l.Next().Type)
	require.Equal(t, TokenSemicolon, l.Next().Type)
}

func TestCompoundOperators(t *testing.T) {
	types := collectTypes("== != <= >= :: =")
	require.Equal(t, []TokenType{
		TokenEqualEqual, TokenBangEqual, TokenLessEqual, TokenGreaterEqual,
		TokenColonColon, TokenEqual, TokenEOF,
	}, types)
}

func TestLineCommentsSkipped(t *testing.T) {
	types := collectTypes("1 // a comment\n2")
	require.Equal(t, []TokenType{TokenNumber, TokenNumber, TokenEOF}, types)
}

func TestStringLiteral(t *testing.T) {
	l := New(`"hello world"`)
	tok := l.Next()
	require.Equal(t, TokenString, tok.Type)
	require.Equal(t, "hello world", tok.Lexeme)
}

func TestUnterminatedStringProducesErrorToken(t *testing.T) {
	l := New(`"hello`)
	tok := l.Next()
	require.Equal(t, TokenError, tok.Type)
	require.Contains(t, tok.Lexeme, "Unterminated string")
}

func TestMultilineStringIncrementsLine(t *testing.T) {
	l := New("\"a\nb\"")
	tok := l.Next()
	require.Equal(t, TokenString, tok.Type)
	require.Equal(t, 2, tok.Line)
}

func TestDecimalNumber(t *testing.T) {
	l := New("3.14")
	tok := l.Next()
	require.Equal(t, TokenNumber, tok.Type)
	require.Equal(t, "3.14", tok.Lexeme)
}

func TestCheckpointRestoreForImports(t *testing.T) {
	l := New("a b c")
	require.Equal(t, "a", l.Next().Lexeme)

	cp := l.Save()
	l.SwitchSource("x y z")
	require.Equal(t, "x", l.Next().Lexeme)
	require.Equal(t, "y", l.Next().Lexeme)

	l.Restore(cp)
	require.Equal(t, "b", l.Next().Lexeme)
	require.Equal(t, "c", l.Next().Lexeme)
}

func TestAllTypeKeywordsRecognised(t *testing.T) {
	for _, kw := range []string{"byte", "short", "int", "long", "float", "double", "char", "boolean", "string"} {
		l := New(kw)
		tok := l.Next()
		require.True(t, IsTypeKeyword(tok.Type), "expected %s to be a type keyword", kw)
	}
}
