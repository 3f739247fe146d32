package jsonrepair

import (
	"math"
	"strconv"
	"strings"
)

// evalArithmetic replaces bare arithmetic expressions in value position with
// their computed result, rounded to two decimal places. Models occasionally
// emit `"estimated_value_usd": 45954.0 / 137` instead of doing the division
// themselves. Only a restricted grammar is recognized: digits, the four
// operators, parentheses, decimal points and whitespace. Plain numbers are
// left untouched.
func evalArithmetic(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	inString := false
	escaped := false
	lastSignificant := byte(0)

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			b.WriteByte(c)
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			lastSignificant = c
			b.WriteByte(c)
			continue
		}

		// Value position: right after a colon, comma or opening bracket.
		if (lastSignificant == ':' || lastSignificant == ',' || lastSignificant == '[') &&
			(isDigit(c) || c == '(' || c == '-') {
			end := i
			for end < len(text) && isArithChar(text[end]) {
				end++
			}
			expr := strings.TrimRight(text[i:end], " \t\n\r")
			if isExpression(expr) {
				if val, ok := evalExpr(expr); ok {
					b.WriteString(formatResult(val))
					i += len(expr) - 1
					lastSignificant = '0'
					continue
				}
			}
		}

		if !isSpace(c) {
			lastSignificant = c
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isArithChar(c byte) bool {
	return isDigit(c) || c == '.' || c == '+' || c == '-' || c == '*' ||
		c == '/' || c == '(' || c == ')' || c == ' ' || c == '\t'
}

// isExpression reports whether expr is arithmetic rather than a plain
// number: it must contain an operator beyond a leading sign.
func isExpression(expr string) bool {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return false
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return false
	}
	body := strings.TrimPrefix(trimmed, "-")
	return strings.ContainsAny(body, "+-*/(")
}

func formatResult(v float64) string {
	rounded := math.Round(v*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

// evalExpr evaluates the restricted arithmetic grammar by recursive descent.
func evalExpr(expr string) (float64, bool) {
	p := &exprParser{src: expr}
	v, ok := p.parseExpr()
	if !ok {
		return 0, false
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return 0, false
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

type exprParser struct {
	src string
	pos int
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *exprParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *exprParser) parseExpr() (float64, bool) {
	left, ok := p.parseTerm()
	if !ok {
		return 0, false
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			right, ok := p.parseTerm()
			if !ok {
				return 0, false
			}
			left += right
		case '-':
			p.pos++
			right, ok := p.parseTerm()
			if !ok {
				return 0, false
			}
			left -= right
		default:
			return left, true
		}
	}
}

func (p *exprParser) parseTerm() (float64, bool) {
	left, ok := p.parseFactor()
	if !ok {
		return 0, false
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			right, ok := p.parseFactor()
			if !ok {
				return 0, false
			}
			left *= right
		case '/':
			p.pos++
			right, ok := p.parseFactor()
			if !ok || right == 0 {
				return 0, false
			}
			left /= right
		default:
			return left, true
		}
	}
}

func (p *exprParser) parseFactor() (float64, bool) {
	switch c := p.peek(); {
	case c == '-':
		p.pos++
		v, ok := p.parseFactor()
		return -v, ok
	case c == '(':
		p.pos++
		v, ok := p.parseExpr()
		if !ok || p.peek() != ')' {
			return 0, false
		}
		p.pos++
		return v, true
	case isDigit(c):
		start := p.pos
		for p.pos < len(p.src) && (isDigit(p.src[p.pos]) || p.src[p.pos] == '.') {
			p.pos++
		}
		v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
		return v, err == nil
	default:
		return 0, false
	}
}
