// Package syntax parses the textual module listing back into the
// in-memory representation. Parse is the inverse of the Module printer:
// parsing a printed listing yields an equivalent module.
package syntax

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenIdent
	tokenNumber
	tokenValueName  // %name
	tokenGlobalName // @name
	tokenBlockName  // ^name
	tokenTypeName   // $name
	tokenEqual
	tokenComma
	tokenColon
	tokenArrow
	tokenLParen
	tokenRParen
	tokenLBrace
	tokenRBrace
	tokenLBracket
	tokenRBracket
)

func (k tokenKind) String() string {
	switch k {
	case tokenEOF:
		return "end of input"
	case tokenIdent:
		return "identifier"
	case tokenNumber:
		return "number"
	case tokenValueName:
		return "value name"
	case tokenGlobalName:
		return "global name"
	case tokenBlockName:
		return "block label"
	case tokenTypeName:
		return "type name"
	case tokenEqual:
		return "'='"
	case tokenComma:
		return "','"
	case tokenColon:
		return "':'"
	case tokenArrow:
		return "'->'"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	case tokenLBrace:
		return "'{'"
	case tokenRBrace:
		return "'}'"
	case tokenLBracket:
		return "'['"
	case tokenRBracket:
		return "']'"
	}
	return "unknown token"
}

type token struct {
	kind tokenKind
	text string
	line int
	col  int
}

// lex tokenizes the whole listing upfront. Comments run from "//" to the
// end of the line.
func lex(src string) ([]token, error) {
	var tokens []token
	line, col := 1, 1
	runes := []rune(src)
	pos := 0

	advance := func() {
		if runes[pos] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
		pos++
	}
	emit := func(kind tokenKind, text string, startLine, startCol int) {
		tokens = append(tokens, token{kind: kind, text: text, line: startLine, col: startCol})
	}

	for pos < len(runes) {
		r := runes[pos]
		startLine, startCol := line, col
		switch {
		case unicode.IsSpace(r):
			advance()
		case r == '/' && pos+1 < len(runes) && runes[pos+1] == '/':
			for pos < len(runes) && runes[pos] != '\n' {
				advance()
			}
		case r == '%' || r == '@' || r == '^' || r == '$':
			advance()
			var sb strings.Builder
			for pos < len(runes) && isNameRune(runes[pos]) {
				sb.WriteRune(runes[pos])
				advance()
			}
			if sb.Len() == 0 {
				return nil, errors.Errorf("%d:%d: %q must be followed by a name", startLine, startCol, r)
			}
			kind := map[rune]tokenKind{'%': tokenValueName, '@': tokenGlobalName, '^': tokenBlockName, '$': tokenTypeName}[r]
			emit(kind, sb.String(), startLine, startCol)
		case unicode.IsLetter(r) || r == '_':
			var sb strings.Builder
			for pos < len(runes) && isNameRune(runes[pos]) {
				sb.WriteRune(runes[pos])
				advance()
			}
			emit(tokenIdent, sb.String(), startLine, startCol)
		case unicode.IsDigit(r) || (r == '-' && pos+1 < len(runes) && (unicode.IsDigit(runes[pos+1]) || runes[pos+1] == '.')):
			var sb strings.Builder
			if r == '-' {
				sb.WriteRune('-')
				advance()
			}
			for pos < len(runes) && isNumberRune(runes, pos) {
				sb.WriteRune(runes[pos])
				advance()
			}
			emit(tokenNumber, sb.String(), startLine, startCol)
		case r == '-' && pos+1 < len(runes) && runes[pos+1] == '>':
			advance()
			advance()
			emit(tokenArrow, "->", startLine, startCol)
		default:
			kind, ok := punctuation[r]
			if !ok {
				return nil, errors.Errorf("%d:%d: unexpected character %q", startLine, startCol, r)
			}
			advance()
			emit(kind, string(r), startLine, startCol)
		}
	}
	emit(tokenEOF, "", line, col)
	return tokens, nil
}

var punctuation = map[rune]tokenKind{
	'=': tokenEqual,
	',': tokenComma,
	':': tokenColon,
	'(': tokenLParen,
	')': tokenRParen,
	'{': tokenLBrace,
	'}': tokenRBrace,
	'[': tokenLBracket,
	']': tokenRBracket,
}

func isNameRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.'
}

// isNumberRune accepts digits, the decimal point and exponents. The sign
// of an exponent is accepted only right after 'e'/'E', so "1e-3" lexes
// as one number while "1-3" does not.
func isNumberRune(runes []rune, pos int) bool {
	r := runes[pos]
	if unicode.IsDigit(r) || r == '.' || r == 'e' || r == 'E' {
		return true
	}
	if (r == '-' || r == '+') && pos > 0 && (runes[pos-1] == 'e' || runes[pos-1] == 'E') {
		return true
	}
	return false
}
