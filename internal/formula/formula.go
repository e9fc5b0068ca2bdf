// Package formula evaluates the restricted spreadsheet expression language
// used by formula columns: [column] references, arithmetic with standard
// precedence, and the SUMIF/LOOKUP cross-table functions.
//
// Evaluation is deliberately not a general interpreter. Function calls are
// expanded to numbers, column references are substituted with numeric row
// values, and the remaining expression must survive a charset check before a
// hand-rolled tokenizer and parser evaluate it. Any failure yields zero; the
// error is diagnostic only and never aborts row rendering.
package formula

import (
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// Row is the evaluation environment for one entity: column-id or snake_case
// key to raw value.
type Row map[string]any

// Tables provides whole-store context for cross-table functions. Rows returns
// the named table's row contexts, or nil for unknown tables.
type Tables interface {
	Rows(table string) []Row
}

// ErrInvalidExpression marks a formula that failed parsing, substitution or
// the post-substitution charset check.
var ErrInvalidExpression = errors.New("formula: invalid expression")

var refPattern = regexp.MustCompile(`\[([^\]]+)\]`)

// Evaluator evaluates formulas. Safe for concurrent use.
type Evaluator struct {
	logger *slog.Logger
}

// New constructs an Evaluator. A nil logger disables diagnostics.
func New(logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Evaluator{logger: logger}
}

// Evaluate computes a formula against a row context and the store-wide
// tables. On any failure it returns 0 together with ErrInvalidExpression;
// callers render the zero and may log, never propagate.
func (e *Evaluator) Evaluate(expr string, row Row, tables Tables) (float64, error) {
	expanded := expr
	for _, name := range functionNames {
		if !strings.Contains(expanded, name) {
			continue
		}
		expanded = functions[name].expand(expanded, row, tables)
	}

	substituted := refPattern.ReplaceAllStringFunc(expanded, func(ref string) string {
		key := ref[1 : len(ref)-1]
		v, ok := numeric(row[key])
		if !ok {
			return "0"
		}
		return formatNumber(v)
	})

	if !safeCharset(substituted) {
		e.logger.Warn("formula rejected", slog.String("formula", expr))
		return 0, ErrInvalidExpression
	}

	value, err := evalArithmetic(substituted)
	if err != nil {
		e.logger.Warn("formula failed", slog.String("formula", expr), slog.Any("error", err))
		return 0, ErrInvalidExpression
	}
	return value, nil
}

// References lists the column keys a formula refers to, in order of
// appearance. Used for config-save validation.
func References(expr string) []string {
	matches := refPattern.FindAllStringSubmatch(expr, -1)
	refs := make([]string, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, m[1])
	}
	return refs
}

// safeCharset admits only digits, the six arithmetic characters, the decimal
// point and whitespace. Everything else fails the formula.
func safeCharset(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '+' || r == '-' || r == '*' || r == '/':
		case r == '(' || r == ')' || r == '.' || r == ' ':
		default:
			return false
		}
	}
	return true
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Arithmetic parser: a plain recursive-descent grammar over the validated
// charset.
//
//	expr   = term  (('+'|'-') term)*
//	term   = factor (('*'|'/') factor)*
//	factor = NUMBER | '(' expr ')' | ('-'|'+') factor

type tokenKind int

const (
	tokenNumber tokenKind = iota
	tokenOp
)

type token struct {
	kind  tokenKind
	value float64
	op    byte
}

func tokenize(s string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ':
			i++
		case c >= '0' && c <= '9' || c == '.':
			j := i
			for j < len(s) && (s[j] >= '0' && s[j] <= '9' || s[j] == '.') {
				j++
			}
			v, err := strconv.ParseFloat(s[i:j], 64)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokenNumber, value: v})
			i = j
		default:
			tokens = append(tokens, token{kind: tokenOp, op: c})
			i++
		}
	}
	return tokens, nil
}

type parser struct {
	tokens []token
	pos    int
}

func evalArithmetic(s string) (float64, error) {
	tokens, err := tokenize(s)
	if err != nil {
		return 0, err
	}
	if len(tokens) == 0 {
		return 0, errors.New("empty expression")
	}
	p := &parser{tokens: tokens}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if p.pos != len(p.tokens) {
		return 0, errors.New("trailing tokens")
	}
	return v, nil
}

func (p *parser) peekOp() (byte, bool) {
	if p.pos >= len(p.tokens) || p.tokens[p.pos].kind != tokenOp {
		return 0, false
	}
	return p.tokens[p.pos].op, true
}

func (p *parser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.peekOp()
		if !ok || (op != '+' && op != '-') {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

func (p *parser) parseTerm() (float64, error) {
	left, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.peekOp()
		if !ok || (op != '*' && op != '/') {
			return left, nil
		}
		p.pos++
		right, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			left *= right
		} else if right == 0 {
			// Division by zero is defined as zero so a zero-priced
			// product yields a zero margin percent instead of ±Inf.
			left = 0
		} else {
			left /= right
		}
	}
}

func (p *parser) parseFactor() (float64, error) {
	if p.pos >= len(p.tokens) {
		return 0, errors.New("unexpected end of expression")
	}
	t := p.tokens[p.pos]
	if t.kind == tokenNumber {
		p.pos++
		return t.value, nil
	}
	switch t.op {
	case '-':
		p.pos++
		v, err := p.parseFactor()
		return -v, err
	case '+':
		p.pos++
		return p.parseFactor()
	case '(':
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		op, ok := p.peekOp()
		if !ok || op != ')' {
			return 0, errors.New("unbalanced parentheses")
		}
		p.pos++
		return v, nil
	default:
		return 0, errors.New("unexpected operator")
	}
}
