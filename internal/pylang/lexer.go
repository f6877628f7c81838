package pylang

import (
	"fmt"
	"strconv"
	"strings"
)

// SyntaxError reports a lexical or grammatical failure with a 1-based position.
type SyntaxError struct {
	Msg  string
	Line int
	Col  int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d, col %d: %s", e.Line, e.Col, e.Msg)
}

func syntaxErrorf(line, col int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...), Line: line, Col: col}
}

// lexer scans source text into tokens. Indentation is significant outside
// brackets: changes in leading whitespace at the start of a logical line
// produce INDENT and DEDENT tokens, and logical line ends produce NEWLINE.
type lexer struct {
	src        string
	pos        int // next byte to read
	line       int
	col        int // 1-based column of src[pos]
	parenDepth int
	indents    []int // indentation stack, always starts with 0
	atLineHead bool
	lastType   TokenType
	pending    []Token // queued INDENT/DEDENT tokens
}

const tabWidth = 8

func newLexer(src string) *lexer {
	return &lexer{
		src:        src,
		line:       1,
		col:        1,
		indents:    []int{0},
		atLineHead: true,
		lastType:   NEWLINE,
	}
}

// scanAll tokenizes the entire input, appending a trailing NEWLINE (if the
// last logical line is unterminated), closing DEDENTs, and EOF.
func scanAll(src string) ([]Token, error) {
	lx := newLexer(src)
	var toks []Token
	for {
		t, err := lx.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.Type == EOF {
			return toks, nil
		}
	}
}

func (lx *lexer) next() (Token, error) {
	if len(lx.pending) > 0 {
		t := lx.pending[0]
		lx.pending = lx.pending[1:]
		lx.lastType = t.Type
		return t, nil
	}

	if lx.atLineHead && lx.parenDepth == 0 {
		if err := lx.handleLineHead(); err != nil {
			return Token{}, err
		}
		if len(lx.pending) > 0 {
			return lx.next()
		}
	}

	lx.skipInlineSpace()

	if lx.pos >= len(lx.src) {
		return lx.finish()
	}

	c := lx.src[lx.pos]

	if c == '#' {
		lx.skipComment()
		return lx.next()
	}

	if c == '\n' || c == '\r' {
		lx.consumeLineBreak()
		if lx.parenDepth > 0 {
			return lx.next() // implicit continuation inside brackets
		}
		lx.atLineHead = true
		if lx.lastType == NEWLINE {
			return lx.next() // collapse blank lines
		}
		return lx.emit(NEWLINE, "", nil), nil
	}

	if isIdentStart(c) {
		return lx.scanIdent(), nil
	}
	if isDigit(c) || (c == '.' && lx.pos+1 < len(lx.src) && isDigit(lx.src[lx.pos+1])) {
		return lx.scanNumber()
	}
	if c == '"' || c == '\'' {
		return lx.scanString()
	}
	return lx.scanOperator()
}

// handleLineHead measures indentation at the start of a logical line and
// queues INDENT/DEDENT tokens as needed. Blank and comment-only lines are
// skipped without affecting the indentation stack.
func (lx *lexer) handleLineHead() error {
	for {
		width := 0
		i := lx.pos
		for i < len(lx.src) {
			switch lx.src[i] {
			case ' ':
				width++
			case '\t':
				width += tabWidth - width%tabWidth
			default:
				goto measured
			}
			i++
		}
	measured:
		if i >= len(lx.src) {
			lx.advanceTo(i)
			lx.atLineHead = false
			return nil // finish() handles trailing dedents
		}
		if lx.src[i] == '\n' || lx.src[i] == '\r' || lx.src[i] == '#' {
			// Blank or comment-only line: consume it without indent changes.
			lx.advanceTo(i)
			if lx.src[lx.pos] == '#' {
				lx.skipComment()
			}
			if lx.pos < len(lx.src) {
				lx.consumeLineBreak()
			}
			continue
		}
		lx.advanceTo(i)
		lx.atLineHead = false
		cur := lx.indents[len(lx.indents)-1]
		switch {
		case width > cur:
			lx.indents = append(lx.indents, width)
			lx.pending = append(lx.pending, lx.emit(INDENT, "", nil))
		case width < cur:
			for lx.indents[len(lx.indents)-1] > width {
				lx.indents = lx.indents[:len(lx.indents)-1]
				lx.pending = append(lx.pending, lx.emit(DEDENT, "", nil))
			}
			if lx.indents[len(lx.indents)-1] != width {
				return syntaxErrorf(lx.line, lx.col, "unindent does not match any outer indentation level")
			}
		}
		return nil
	}
}

func (lx *lexer) finish() (Token, error) {
	if lx.lastType != NEWLINE && lx.lastType != DEDENT && lx.lastType != EOF {
		return lx.emit(NEWLINE, "", nil), nil
	}
	if len(lx.indents) > 1 {
		lx.indents = lx.indents[:len(lx.indents)-1]
		return lx.emit(DEDENT, "", nil), nil
	}
	return lx.emit(EOF, "", nil), nil
}

func (lx *lexer) scanIdent() Token {
	start := lx.pos
	for lx.pos < len(lx.src) && isIdentPart(lx.src[lx.pos]) {
		lx.advance()
	}
	word := lx.src[start:lx.pos]
	if kw, ok := keywords[word]; ok {
		return lx.emitAt(kw, word, nil, start)
	}
	return lx.emitAt(IDENT, word, nil, start)
}

func (lx *lexer) scanNumber() (Token, error) {
	start := lx.pos
	isFloat := false
	for lx.pos < len(lx.src) && isDigit(lx.src[lx.pos]) {
		lx.advance()
	}
	if lx.pos < len(lx.src) && lx.src[lx.pos] == '.' {
		// Not a float if this is an attribute access like 1 .foo; a digit or
		// end-of-number is required after the dot only for exponent-free forms.
		isFloat = true
		lx.advance()
		for lx.pos < len(lx.src) && isDigit(lx.src[lx.pos]) {
			lx.advance()
		}
	}
	if lx.pos < len(lx.src) && (lx.src[lx.pos] == 'e' || lx.src[lx.pos] == 'E') {
		mark := lx.pos
		lx.advance()
		if lx.pos < len(lx.src) && (lx.src[lx.pos] == '+' || lx.src[lx.pos] == '-') {
			lx.advance()
		}
		if lx.pos < len(lx.src) && isDigit(lx.src[lx.pos]) {
			isFloat = true
			for lx.pos < len(lx.src) && isDigit(lx.src[lx.pos]) {
				lx.advance()
			}
		} else {
			lx.rewindTo(mark)
		}
	}
	text := lx.src[start:lx.pos]
	if !isFloat {
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return lx.emitAt(INT, text, n, start), nil
		}
		// Fall through to float for out-of-range integers.
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Token{}, syntaxErrorf(lx.line, lx.col, "invalid number literal %q", text)
	}
	return lx.emitAt(FLOAT, text, f, start), nil
}

func (lx *lexer) scanString() (Token, error) {
	start := lx.pos
	startLine, startCol := lx.line, lx.col
	quote := lx.src[lx.pos]
	triple := strings.HasPrefix(lx.src[lx.pos:], strings.Repeat(string(quote), 3))
	if triple {
		lx.advance()
		lx.advance()
	}
	lx.advance()

	var sb strings.Builder
	for {
		if lx.pos >= len(lx.src) {
			return Token{}, syntaxErrorf(startLine, startCol, "unterminated string literal")
		}
		c := lx.src[lx.pos]
		if c == '\\' && lx.pos+1 < len(lx.src) {
			esc := lx.src[lx.pos+1]
			lx.advance()
			lx.advance()
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\':
				sb.WriteByte('\\')
			case '\'':
				sb.WriteByte('\'')
			case '"':
				sb.WriteByte('"')
			case '0':
				sb.WriteByte(0)
			case '\n':
				// line continuation inside a string
				lx.line++
				lx.col = 1
			default:
				sb.WriteByte('\\')
				sb.WriteByte(esc)
			}
			continue
		}
		if !triple && (c == '\n' || c == '\r') {
			return Token{}, syntaxErrorf(startLine, startCol, "unterminated string literal")
		}
		if c == quote {
			if !triple {
				lx.advance()
				break
			}
			if strings.HasPrefix(lx.src[lx.pos:], strings.Repeat(string(quote), 3)) {
				lx.advance()
				lx.advance()
				lx.advance()
				break
			}
		}
		if c == '\n' {
			lx.consumeLineBreak()
			sb.WriteByte('\n')
			continue
		}
		sb.WriteByte(c)
		lx.advance()
	}
	return lx.emitAt(STRING, lx.src[start:lx.pos], sb.String(), start), nil
}

func (lx *lexer) scanOperator() (Token, error) {
	start := lx.pos
	two := ""
	if lx.pos+1 < len(lx.src) {
		two = lx.src[lx.pos : lx.pos+2]
	}
	three := ""
	if lx.pos+2 < len(lx.src) {
		three = lx.src[lx.pos : lx.pos+3]
	}

	emit2 := func(tt TokenType) (Token, error) {
		lx.advance()
		lx.advance()
		return lx.emitAt(tt, two, nil, start), nil
	}

	if three == "//=" {
		lx.advance()
		lx.advance()
		lx.advance()
		return lx.emitAt(FLOORDIVEQ, three, nil, start), nil
	}

	switch two {
	case "**":
		return emit2(POW)
	case "//":
		return emit2(FLOORDIV)
	case "==":
		return emit2(EQ)
	case "!=":
		return emit2(NEQ)
	case "<=":
		return emit2(LTE)
	case ">=":
		return emit2(GTE)
	case "+=":
		return emit2(PLUSEQ)
	case "-=":
		return emit2(MINUSEQ)
	case "*=":
		return emit2(STAREQ)
	case "/=":
		return emit2(SLASHEQ)
	case "%=":
		return emit2(PERCENTEQ)
	case "->":
		return emit2(ARROW)
	}

	c := lx.src[lx.pos]
	lx.advance()
	one := string(c)
	switch c {
	case '(':
		lx.parenDepth++
		return lx.emitAt(LPAREN, one, nil, start), nil
	case ')':
		lx.parenDepth--
		return lx.emitAt(RPAREN, one, nil, start), nil
	case '[':
		lx.parenDepth++
		return lx.emitAt(LBRACKET, one, nil, start), nil
	case ']':
		lx.parenDepth--
		return lx.emitAt(RBRACKET, one, nil, start), nil
	case '{':
		lx.parenDepth++
		return lx.emitAt(LBRACE, one, nil, start), nil
	case '}':
		lx.parenDepth--
		return lx.emitAt(RBRACE, one, nil, start), nil
	case ':':
		return lx.emitAt(COLON, one, nil, start), nil
	case ',':
		return lx.emitAt(COMMA, one, nil, start), nil
	case '.':
		return lx.emitAt(DOT, one, nil, start), nil
	case '+':
		return lx.emitAt(PLUS, one, nil, start), nil
	case '-':
		return lx.emitAt(MINUS, one, nil, start), nil
	case '*':
		return lx.emitAt(STAR, one, nil, start), nil
	case '/':
		return lx.emitAt(SLASH, one, nil, start), nil
	case '%':
		return lx.emitAt(PERCENT, one, nil, start), nil
	case '=':
		return lx.emitAt(ASSIGN, one, nil, start), nil
	case '<':
		return lx.emitAt(LT, one, nil, start), nil
	case '>':
		return lx.emitAt(GT, one, nil, start), nil
	}
	return Token{}, syntaxErrorf(lx.line, lx.col-1, "unexpected character %q", string(c))
}

func (lx *lexer) skipInlineSpace() {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		if c == ' ' || c == '\t' {
			lx.advance()
			continue
		}
		if c == '\\' && lx.pos+1 < len(lx.src) && (lx.src[lx.pos+1] == '\n' || lx.src[lx.pos+1] == '\r') {
			lx.advance()
			lx.consumeLineBreak()
			continue
		}
		return
	}
}

func (lx *lexer) skipComment() {
	for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' && lx.src[lx.pos] != '\r' {
		lx.advance()
	}
}

func (lx *lexer) consumeLineBreak() {
	if lx.pos < len(lx.src) && lx.src[lx.pos] == '\r' {
		lx.pos++
	}
	if lx.pos < len(lx.src) && lx.src[lx.pos] == '\n' {
		lx.pos++
	}
	lx.line++
	lx.col = 1
}

func (lx *lexer) advance() {
	lx.pos++
	lx.col++
}

func (lx *lexer) advanceTo(i int) {
	lx.col += i - lx.pos
	lx.pos = i
}

func (lx *lexer) rewindTo(i int) {
	lx.col -= lx.pos - i
	lx.pos = i
}

func (lx *lexer) emit(tt TokenType, lexeme string, lit any) Token {
	return lx.emitAt(tt, lexeme, lit, lx.pos)
}

func (lx *lexer) emitAt(tt TokenType, lexeme string, lit any, startOffset int) Token {
	lx.lastType = tt
	return Token{
		Type:    tt,
		Lexeme:  lexeme,
		Literal: lit,
		Line:    lx.line,
		Col:     lx.col - len(lexeme),
		Offset:  startOffset,
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
