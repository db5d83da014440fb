package internal

import (
	"iter"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// ScanState is a template scanner state
type ScanState int

// Scanner state constants
const (
	ScanStateBody ScanState = iota
	ScanStatePrefix
	ScanStateIdentifier
	ScanStateBalanced
	ScanStateStringLiteral
	ScanStateEscapedPrefix
)

// Scanner state names for debugging
const (
	ScanStateNameBody          = "BODY"
	ScanStateNamePrefix        = "PREFIX"
	ScanStateNameIdentifier    = "IDENTIFIER"
	ScanStateNameBalanced      = "BALANCED"
	ScanStateNameStringLiteral = "STRING_LITERAL"
	ScanStateNameEscapedPrefix = "ESCAPED_PREFIX"
)

// String returns the state name
func (s ScanState) String() string {
	switch s {
	case ScanStatePrefix:
		return ScanStateNamePrefix
	case ScanStateIdentifier:
		return ScanStateNameIdentifier
	case ScanStateBalanced:
		return ScanStateNameBalanced
	case ScanStateStringLiteral:
		return ScanStateNameStringLiteral
	case ScanStateEscapedPrefix:
		return ScanStateNameEscapedPrefix
	default:
		return ScanStateNameBody
	}
}

// ScanAction tells the driver what to do with the character just stepped over
type ScanAction int

// Scanner action constants
const (
	// ScanActionLiteral appends the character to literal output
	ScanActionLiteral ScanAction = iota
	// ScanActionSkip consumes the character without output
	ScanActionSkip
	// ScanActionBegin starts a new expression with the character
	ScanActionBegin
	// ScanActionAppend appends the character to the current expression
	ScanActionAppend
	// ScanActionComplete appends the character and terminates the expression
	ScanActionComplete
)

// EOF is the lookahead value past the end of input
const EOF rune = -1

// IsWordChar reports whether ch is an ASCII letter, digit or underscore
func IsWordChar(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == CharUnderscore
}

// Step is the scanner transition function. Given the current state and
// parenthesis depth, the current character and two characters of lookahead
// (EOF past the end), it returns the next state, the next depth and the action
// to apply to ch. Step has no side effects.
func Step(state ScanState, depth int, ch, next, nextNext, trigger rune) (ScanState, int, ScanAction) {
	action := ScanActionAppend

	switch state {
	case ScanStateBody:
		if ch == trigger && (IsWordChar(next) || next == CharOpenParen) {
			return ScanStatePrefix, depth, ScanActionBegin
		}
		if ch == trigger && next == trigger {
			return ScanStateEscapedPrefix, depth, ScanActionSkip
		}
		return ScanStateBody, depth, ScanActionLiteral

	case ScanStatePrefix:
		if IsWordChar(ch) {
			state = ScanStateIdentifier
		} else if ch == CharOpenParen {
			state = ScanStateBalanced
			depth++
		}

	case ScanStateIdentifier:
		// appended below; termination is decided by lookahead

	case ScanStateBalanced:
		switch ch {
		case CharOpenParen:
			depth++
		case CharCloseParen:
			depth--
		case CharDoubleQuote:
			state = ScanStateStringLiteral
		}
		if depth == 0 {
			return ScanStateBody, 0, ScanActionComplete
		}

	case ScanStateStringLiteral:
		if ch == CharDoubleQuote {
			state = ScanStateBalanced
		}

	case ScanStateEscapedPrefix:
		return ScanStateBody, depth, ScanActionLiteral
	}

	// An identifier chain ends at end of input, before a character that can
	// not continue it, or before a period not followed by a word character.
	if state == ScanStateIdentifier {
		if next == EOF ||
			(!IsWordChar(next) && next != CharPeriod) ||
			(next == CharPeriod && !IsWordChar(nextNext)) {
			return ScanStateBody, depth, ScanActionComplete
		}
	}

	return state, depth, action
}

// SegmentKind distinguishes literal text from expressions
type SegmentKind int

// Segment kind constants
const (
	SegmentKindLiteral SegmentKind = iota
	SegmentKindExpression
)

// Segment kind names
const (
	SegmentKindNameLiteral    = "literal"
	SegmentKindNameExpression = "expression"
)

// String returns the segment kind name
func (k SegmentKind) String() string {
	if k == SegmentKindExpression {
		return SegmentKindNameExpression
	}
	return SegmentKindNameLiteral
}

// Segment is one piece of a scanned template. Start and End are byte offsets
// into the template; consecutive segments cover it without gaps or overlap.
// Text is the rendered text: for literals escaped triggers are collapsed, for
// expressions it is the source including the trigger.
type Segment struct {
	Kind  SegmentKind
	Text  string
	Start int
	End   int
	// Unterminated marks a literal holding an expression that reached end of
	// input before it was complete. Its text is the source, unevaluated.
	Unterminated bool
}

// Scanner splits templates into literal and expression segments
type Scanner struct {
	trigger rune
	logger  *zap.Logger
}

// NewScanner creates a scanner for the given trigger character
func NewScanner(trigger rune, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgScannerCreated, zap.String(LogFieldTrigger, string(trigger)))
	return &Scanner{
		trigger: trigger,
		logger:  logger,
	}
}

// Trigger returns the trigger character
func (s *Scanner) Trigger() rune {
	return s.trigger
}

// Segments streams the segments of template in order. Each expression
// segment is yielded as soon as it terminates. Scanning never fails.
func (s *Scanner) Segments(template string) iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		var (
			literal      strings.Builder
			literalStart int
			exprStart    = -1
			state        = ScanStateBody
			depth        int
		)

		flushLiteral := func(end int) bool {
			if end <= literalStart {
				return true
			}
			seg := Segment{Kind: SegmentKindLiteral, Text: literal.String(), Start: literalStart, End: end}
			literal.Reset()
			literalStart = end
			return yield(seg)
		}

		pos := 0
		ch, size := decodeAt(template, pos)
		for ch != EOF {
			next, nextSize := decodeAt(template, pos+size)
			nextNext := EOF
			if next != EOF {
				nextNext, _ = decodeAt(template, pos+size+nextSize)
			}

			var action ScanAction
			state, depth, action = Step(state, depth, ch, next, nextNext, s.trigger)

			switch action {
			case ScanActionLiteral:
				literal.WriteString(template[pos : pos+size])
			case ScanActionBegin:
				if !flushLiteral(pos) {
					return
				}
				exprStart = pos
			case ScanActionComplete:
				end := pos + size
				seg := Segment{Kind: SegmentKindExpression, Text: template[exprStart:end], Start: exprStart, End: end}
				exprStart = -1
				literalStart = end
				if !yield(seg) {
					return
				}
			}

			pos += size
			ch, size = next, nextSize
		}

		if exprStart >= 0 {
			s.logger.Debug(LogMsgScanUnterminated, zap.Int(LogFieldOffset, exprStart))
			yield(Segment{
				Kind:         SegmentKindLiteral,
				Text:         template[exprStart:],
				Start:        exprStart,
				End:          len(template),
				Unterminated: true,
			})
			return
		}
		flushLiteral(len(template))
	}
}

// Scan collects all segments of template
func (s *Scanner) Scan(template string) []Segment {
	s.logger.Debug(LogMsgScanStart, zap.Int(LogFieldSource, len(template)))
	var segments []Segment
	for seg := range s.Segments(template) {
		segments = append(segments, seg)
	}
	s.logger.Debug(LogMsgScanComplete, zap.Int(LogFieldSegments, len(segments)))
	return segments
}

// decodeAt decodes the rune at byte offset i, or EOF past the end
func decodeAt(s string, i int) (rune, int) {
	if i >= len(s) {
		return EOF, 0
	}
	r, size := utf8.DecodeRuneInString(s[i:])
	return r, size
}
