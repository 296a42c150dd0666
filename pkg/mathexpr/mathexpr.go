// Package mathexpr evaluates the arithmetic typed into math-enabled numeric
// fields, e.g. "12*3+4" or "(10-2)/4".
package mathexpr

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	errUnexpectedEnd = errors.New("mathexpr: unexpected end of expression")
	errDivision      = errors.New("mathexpr: division by zero")
	errNonFinite     = errors.New("mathexpr: non-finite result")
)

// Eval returns the numeric value of text. Characters other than digits, the
// decimal point, + - * / ( ) and whitespace are dropped first. Text without
// operators is parsed as a leading number ("12kg" is 12). Malformed input and
// non-finite results yield 0.
func Eval(text string) float64 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	cleaned := sanitize(trimmed)
	if strings.ContainsAny(cleaned, "+-*/()") {
		value, err := Parse(cleaned)
		switch {
		case err == nil:
			return value
		case errors.Is(err, errDivision), errors.Is(err, errNonFinite):
			return 0
		}
	}
	return Number(trimmed)
}

// Parse evaluates an expression strictly, reporting syntax errors.
func Parse(expr string) (float64, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return 0, err
	}
	if len(tokens) == 0 {
		return 0, errUnexpectedEnd
	}
	stream := &tokenStream{tokens: tokens}
	value, err := stream.parseExpression()
	if err != nil {
		return 0, err
	}
	if tok, ok := stream.peek(); ok {
		return 0, fmt.Errorf("mathexpr: unexpected token %q", tok.raw)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, errNonFinite
	}
	return value, nil
}

func sanitize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case strings.ContainsRune("+-*/(). \t", r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Number parses text the lenient way form inputs do: the longest numeric
// prefix wins and text without one is 0.
func Number(text string) float64 {
	text = strings.TrimSpace(text)
	end := 0
	seenDigit, seenDot := false, false
scan:
	for idx, r := range text {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
			end = idx + 1
		case r == '.' && !seenDot:
			seenDot = true
		case (r == '-' || r == '+') && idx == 0:
		default:
			break scan
		}
	}
	if !seenDigit {
		return 0
	}
	value, err := strconv.ParseFloat(text[:end], 64)
	if err != nil {
		return 0
	}
	return value
}

type tokenKind int

const (
	tokenNumber tokenKind = iota
	tokenPlus
	tokenMinus
	tokenStar
	tokenSlash
	tokenLParen
	tokenRParen
)

type token struct {
	kind  tokenKind
	raw   string
	value float64
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	for i := 0; i < len(input); {
		ch := input[i]
		switch {
		case ch == ' ' || ch == '\t':
			i++
		case ch == '+':
			tokens = append(tokens, token{kind: tokenPlus, raw: "+"})
			i++
		case ch == '-':
			tokens = append(tokens, token{kind: tokenMinus, raw: "-"})
			i++
		case ch == '*':
			tokens = append(tokens, token{kind: tokenStar, raw: "*"})
			i++
		case ch == '/':
			tokens = append(tokens, token{kind: tokenSlash, raw: "/"})
			i++
		case ch == '(':
			tokens = append(tokens, token{kind: tokenLParen, raw: "("})
			i++
		case ch == ')':
			tokens = append(tokens, token{kind: tokenRParen, raw: ")"})
			i++
		case (ch >= '0' && ch <= '9') || ch == '.':
			start := i
			for i < len(input) && ((input[i] >= '0' && input[i] <= '9') || input[i] == '.') {
				i++
			}
			raw := input[start:i]
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("mathexpr: invalid number %q", raw)
			}
			tokens = append(tokens, token{kind: tokenNumber, raw: raw, value: value})
		default:
			return nil, fmt.Errorf("mathexpr: unexpected character %q", ch)
		}
	}
	return tokens, nil
}

type tokenStream struct {
	tokens []token
	pos    int
}

func (s *tokenStream) peek() (token, bool) {
	if s.pos >= len(s.tokens) {
		return token{}, false
	}
	return s.tokens[s.pos], true
}

func (s *tokenStream) match(kinds ...tokenKind) (token, bool) {
	tok, ok := s.peek()
	if !ok {
		return token{}, false
	}
	for _, kind := range kinds {
		if tok.kind == kind {
			s.pos++
			return tok, true
		}
	}
	return token{}, false
}

// expression := term (('+' | '-') term)*
func (s *tokenStream) parseExpression() (float64, error) {
	left, err := s.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := s.match(tokenPlus, tokenMinus)
		if !ok {
			return left, nil
		}
		right, err := s.parseTerm()
		if err != nil {
			return 0, err
		}
		if op.kind == tokenPlus {
			left += right
		} else {
			left -= right
		}
	}
}

// term := unary (('*' | '/') unary)*
func (s *tokenStream) parseTerm() (float64, error) {
	left, err := s.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := s.match(tokenStar, tokenSlash)
		if !ok {
			return left, nil
		}
		right, err := s.parseUnary()
		if err != nil {
			return 0, err
		}
		if op.kind == tokenStar {
			left *= right
			continue
		}
		if right == 0 {
			return 0, errDivision
		}
		left /= right
	}
}

// unary := ('+' | '-') unary | primary
func (s *tokenStream) parseUnary() (float64, error) {
	if op, ok := s.match(tokenPlus, tokenMinus); ok {
		value, err := s.parseUnary()
		if err != nil {
			return 0, err
		}
		if op.kind == tokenMinus {
			return -value, nil
		}
		return value, nil
	}
	return s.parsePrimary()
}

// primary := number | '(' expression ')'
func (s *tokenStream) parsePrimary() (float64, error) {
	tok, ok := s.peek()
	if !ok {
		return 0, errUnexpectedEnd
	}
	switch tok.kind {
	case tokenNumber:
		s.pos++
		return tok.value, nil
	case tokenLParen:
		s.pos++
		value, err := s.parseExpression()
		if err != nil {
			return 0, err
		}
		if _, ok := s.match(tokenRParen); !ok {
			return 0, fmt.Errorf("mathexpr: missing closing parenthesis")
		}
		return value, nil
	}
	return 0, fmt.Errorf("mathexpr: unexpected token %q", tok.raw)
}
