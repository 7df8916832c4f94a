package pdf

import (
	"strconv"
	"strings"
	"unicode"
)

// The content scanner walks a page content stream and recovers two things:
// positioned text runs (from the text-showing operators) and XObject
// placements (from the transform in effect at each Do). It interprets just
// enough of the operator set to get usable layout coordinates; glyph metrics
// are estimated from the font size, which is accurate enough for
// center-distance matching at catalog-page scale.

const defaultFontSize = 12.0

// matrix is a PDF transformation matrix [a b c d e f].
type matrix [6]float64

func identityMatrix() matrix {
	return matrix{1, 0, 0, 1, 0, 0}
}

// mul returns m concatenated onto n (m × n), the order PDF uses for cm and Td.
func (m matrix) mul(n matrix) matrix {
	return matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

// apply transforms the point (x, y) into device space.
func (m matrix) apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

func translation(tx, ty float64) matrix {
	return matrix{1, 0, 0, 1, tx, ty}
}

// textRun is one positioned piece of shown text.
type textRun struct {
	text     string
	x, y     float64
	width    float64
	fontSize float64
}

// xobjectPlacement records where an XObject was painted.
type xobjectPlacement struct {
	name string
	box  Box
}

type operandKind int

const (
	operandNumber operandKind = iota
	operandString
	operandName
	operandArray
)

type operand struct {
	kind operandKind
	num  float64
	str  string
	arr  []operand
}

// contentScanner tokenizes a content stream and tracks the graphics and text
// state needed for positioning.
type contentScanner struct {
	data []byte
	pos  int

	operands []operand

	ctm      matrix
	ctmStack []matrix

	inText   bool
	tm       matrix
	tlm      matrix
	fontSize float64
	leading  float64

	runs       []textRun
	placements []xobjectPlacement
}

// scanContent interprets a content stream and returns the recovered text runs
// and XObject placements.
func scanContent(data []byte) ([]textRun, []xobjectPlacement) {
	s := &contentScanner{
		data:     data,
		ctm:      identityMatrix(),
		fontSize: defaultFontSize,
	}
	s.run()
	return s.runs, s.placements
}

func (s *contentScanner) run() {
	for s.pos < len(s.data) {
		op, ok := s.next()
		if !ok {
			return
		}
		s.operands = append(s.operands, op)
	}
}

// next reads the next token; operators are dispatched in place and not
// returned as operands.
func (s *contentScanner) next() (operand, bool) {
	for {
		s.skipWhitespaceAndComments()
		if s.pos >= len(s.data) {
			return operand{}, false
		}

		c := s.data[s.pos]
		switch {
		case c == '(':
			return operand{kind: operandString, str: s.readLiteralString()}, true
		case c == '<':
			if s.pos+1 < len(s.data) && s.data[s.pos+1] == '<' {
				s.skipDictionary()
				continue
			}
			return operand{kind: operandString, str: s.readHexString()}, true
		case c == '[':
			s.pos++
			return operand{kind: operandArray, arr: s.readArray()}, true
		case c == ']':
			// Stray close bracket from an unbalanced stream.
			s.pos++
			continue
		case c == '/':
			return operand{kind: operandName, str: s.readName()}, true
		case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
			return operand{kind: operandNumber, num: s.readNumber()}, true
		default:
			kw := s.readKeyword()
			if kw == "" {
				s.pos++
				continue
			}
			s.dispatch(kw)
			continue
		}
	}
}

func (s *contentScanner) skipWhitespaceAndComments() {
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if isPDFWhitespace(c) {
			s.pos++
			continue
		}
		if c == '%' {
			for s.pos < len(s.data) && s.data[s.pos] != '\n' && s.data[s.pos] != '\r' {
				s.pos++
			}
			continue
		}
		return
	}
}

func isPDFWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

func isPDFDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

// readLiteralString reads a ( ... ) string, honoring nested parentheses and
// backslash escapes.
func (s *contentScanner) readLiteralString() string {
	s.pos++ // consume '('
	var sb strings.Builder
	depth := 1
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		switch c {
		case '\\':
			s.pos++
			if s.pos >= len(s.data) {
				return sb.String()
			}
			e := s.data[s.pos]
			switch e {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'b', 'f':
				// Ignored control characters.
			case '(', ')', '\\':
				sb.WriteByte(e)
			case '\r':
				// Line continuation; swallow an optional LF.
				if s.pos+1 < len(s.data) && s.data[s.pos+1] == '\n' {
					s.pos++
				}
			case '\n':
				// Line continuation.
			default:
				if e >= '0' && e <= '7' {
					val := int(e - '0')
					for i := 0; i < 2 && s.pos+1 < len(s.data); i++ {
						n := s.data[s.pos+1]
						if n < '0' || n > '7' {
							break
						}
						val = val*8 + int(n-'0')
						s.pos++
					}
					sb.WriteByte(byte(val))
				} else {
					sb.WriteByte(e)
				}
			}
			s.pos++
		case '(':
			depth++
			sb.WriteByte(c)
			s.pos++
		case ')':
			depth--
			s.pos++
			if depth == 0 {
				return sb.String()
			}
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
			s.pos++
		}
	}
	return sb.String()
}

// readHexString reads a < ... > string.
func (s *contentScanner) readHexString() string {
	s.pos++ // consume '<'
	var hexDigits []byte
	for s.pos < len(s.data) && s.data[s.pos] != '>' {
		c := s.data[s.pos]
		if isHexDigit(c) {
			hexDigits = append(hexDigits, c)
		}
		s.pos++
	}
	if s.pos < len(s.data) {
		s.pos++ // consume '>'
	}
	if len(hexDigits)%2 == 1 {
		hexDigits = append(hexDigits, '0')
	}
	var sb strings.Builder
	for i := 0; i+1 < len(hexDigits); i += 2 {
		hi := hexValue(hexDigits[i])
		lo := hexValue(hexDigits[i+1])
		sb.WriteByte(byte(hi<<4 | lo))
	}
	return sb.String()
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	default:
		return int(c-'A') + 10
	}
}

// skipDictionary skips a << ... >> dictionary, tracking nesting.
func (s *contentScanner) skipDictionary() {
	depth := 0
	for s.pos < len(s.data) {
		if s.pos+1 < len(s.data) && s.data[s.pos] == '<' && s.data[s.pos+1] == '<' {
			depth++
			s.pos += 2
			continue
		}
		if s.pos+1 < len(s.data) && s.data[s.pos] == '>' && s.data[s.pos+1] == '>' {
			depth--
			s.pos += 2
			if depth == 0 {
				return
			}
			continue
		}
		if s.data[s.pos] == '(' {
			s.readLiteralString()
			continue
		}
		s.pos++
	}
}

// readArray reads operands until the matching ']'. Nested operators inside
// arrays do not occur in well-formed streams.
func (s *contentScanner) readArray() []operand {
	var arr []operand
	for {
		s.skipWhitespaceAndComments()
		if s.pos >= len(s.data) || s.data[s.pos] == ']' {
			if s.pos < len(s.data) {
				s.pos++
			}
			return arr
		}
		c := s.data[s.pos]
		switch {
		case c == '(':
			arr = append(arr, operand{kind: operandString, str: s.readLiteralString()})
		case c == '<' && s.pos+1 < len(s.data) && s.data[s.pos+1] != '<':
			arr = append(arr, operand{kind: operandString, str: s.readHexString()})
		case c == '/':
			arr = append(arr, operand{kind: operandName, str: s.readName()})
		case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
			arr = append(arr, operand{kind: operandNumber, num: s.readNumber()})
		default:
			s.pos++
		}
	}
}

func (s *contentScanner) readName() string {
	s.pos++ // consume '/'
	start := s.pos
	for s.pos < len(s.data) && !isPDFWhitespace(s.data[s.pos]) && !isPDFDelimiter(s.data[s.pos]) {
		s.pos++
	}
	return string(s.data[start:s.pos])
}

func (s *contentScanner) readNumber() float64 {
	start := s.pos
	if s.data[s.pos] == '+' || s.data[s.pos] == '-' {
		s.pos++
	}
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if (c >= '0' && c <= '9') || c == '.' {
			s.pos++
			continue
		}
		break
	}
	f, err := strconv.ParseFloat(string(s.data[start:s.pos]), 64)
	if err != nil {
		return 0
	}
	return f
}

func (s *contentScanner) readKeyword() string {
	start := s.pos
	for s.pos < len(s.data) && !isPDFWhitespace(s.data[s.pos]) && !isPDFDelimiter(s.data[s.pos]) {
		s.pos++
	}
	return string(s.data[start:s.pos])
}

// popNumbers takes the last n numeric operands off the stack, oldest first.
func (s *contentScanner) popNumbers(n int) ([]float64, bool) {
	if len(s.operands) < n {
		return nil, false
	}
	out := make([]float64, n)
	tail := s.operands[len(s.operands)-n:]
	for i, op := range tail {
		if op.kind != operandNumber {
			return nil, false
		}
		out[i] = op.num
	}
	return out, true
}

func (s *contentScanner) lastOperand() (operand, bool) {
	if len(s.operands) == 0 {
		return operand{}, false
	}
	return s.operands[len(s.operands)-1], true
}

func (s *contentScanner) clearOperands() {
	s.operands = s.operands[:0]
}

// dispatch executes one operator against the current state.
func (s *contentScanner) dispatch(op string) {
	switch op {
	case "q":
		s.ctmStack = append(s.ctmStack, s.ctm)
	case "Q":
		if n := len(s.ctmStack); n > 0 {
			s.ctm = s.ctmStack[n-1]
			s.ctmStack = s.ctmStack[:n-1]
		}
	case "cm":
		if nums, ok := s.popNumbers(6); ok {
			s.ctm = matrix{nums[0], nums[1], nums[2], nums[3], nums[4], nums[5]}.mul(s.ctm)
		}
	case "BT":
		s.inText = true
		s.tm = identityMatrix()
		s.tlm = identityMatrix()
	case "ET":
		s.inText = false
	case "Tf":
		if nums, ok := s.popNumbers(1); ok && nums[0] > 0 {
			s.fontSize = nums[0]
		}
	case "TL":
		if nums, ok := s.popNumbers(1); ok {
			s.leading = nums[0]
		}
	case "Td":
		if nums, ok := s.popNumbers(2); ok {
			s.moveLine(nums[0], nums[1])
		}
	case "TD":
		if nums, ok := s.popNumbers(2); ok {
			s.leading = -nums[1]
			s.moveLine(nums[0], nums[1])
		}
	case "Tm":
		if nums, ok := s.popNumbers(6); ok {
			s.tlm = matrix{nums[0], nums[1], nums[2], nums[3], nums[4], nums[5]}
			s.tm = s.tlm
		}
	case "T*":
		s.nextLine()
	case "Tj":
		if last, ok := s.lastOperand(); ok && last.kind == operandString {
			s.showText(last.str)
		}
	case "'":
		if last, ok := s.lastOperand(); ok && last.kind == operandString {
			s.nextLine()
			s.showText(last.str)
		}
	case "\"":
		if last, ok := s.lastOperand(); ok && last.kind == operandString {
			s.nextLine()
			s.showText(last.str)
		}
	case "TJ":
		if last, ok := s.lastOperand(); ok && last.kind == operandArray {
			for _, el := range last.arr {
				switch el.kind {
				case operandString:
					s.showText(el.str)
				case operandNumber:
					// Negative adjustments move the pen right.
					s.tm = translation(-el.num/1000*s.fontSize, 0).mul(s.tm)
				case operandName, operandArray:
					// Not valid inside TJ; ignore.
				}
			}
		}
	case "Do":
		if last, ok := s.lastOperand(); ok && last.kind == operandName {
			s.placeXObject(last.str)
		}
	case "BI":
		s.skipInlineImage()
	}
	s.clearOperands()
}

func (s *contentScanner) moveLine(tx, ty float64) {
	s.tlm = translation(tx, ty).mul(s.tlm)
	s.tm = s.tlm
}

func (s *contentScanner) nextLine() {
	leading := s.leading
	if leading == 0 {
		leading = s.fontSize * 1.2
	}
	s.moveLine(0, -leading)
}

// showText records a text run at the current text position and advances the
// pen by an estimated width.
func (s *contentScanner) showText(raw string) {
	text := cleanRunText(raw)
	advance := estimateAdvance(raw, s.fontSize)
	defer func() {
		s.tm = translation(advance, 0).mul(s.tm)
	}()
	if text == "" {
		return
	}

	x, y := s.tm.mul(s.ctm).apply(0, 0)
	s.runs = append(s.runs, textRun{
		text:     text,
		x:        x,
		y:        y,
		width:    advance,
		fontSize: s.fontSize,
	})
}

// estimateAdvance guesses the horizontal advance of a shown string. Half the
// font size per character is a workable average for proportional Latin fonts.
func estimateAdvance(raw string, fontSize float64) float64 {
	n := len([]rune(raw))
	return float64(n) * fontSize * 0.5
}

// cleanRunText drops non-printable bytes that survive naive string decoding
// of CID-encoded fonts.
func cleanRunText(raw string) string {
	var sb strings.Builder
	for _, r := range raw {
		if r == '\n' || r == '\t' {
			sb.WriteByte(' ')
			continue
		}
		if unicode.IsPrint(r) {
			sb.WriteRune(r)
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

// placeXObject records the page-space box covered by a Do operation. An
// XObject paints into the unit square transformed by the CTM.
func (s *contentScanner) placeXObject(name string) {
	corners := [4][2]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	var minX, minY, maxX, maxY float64
	for i, c := range corners {
		x, y := s.ctm.apply(c[0], c[1])
		if i == 0 {
			minX, maxX, minY, maxY = x, x, y, y
			continue
		}
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	s.placements = append(s.placements, xobjectPlacement{
		name: name,
		box:  Box{Left: minX, Bottom: minY, Right: maxX, Top: maxY},
	})
}

// skipInlineImage consumes a BI ... ID <data> EI inline image.
func (s *contentScanner) skipInlineImage() {
	for s.pos+1 < len(s.data) {
		if s.data[s.pos] == 'E' && s.data[s.pos+1] == 'I' &&
			(s.pos+2 >= len(s.data) || isPDFWhitespace(s.data[s.pos+2])) {
			s.pos += 2
			return
		}
		s.pos++
	}
	s.pos = len(s.data)
}
