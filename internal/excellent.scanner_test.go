package internal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStep_Transitions(t *testing.T) {
	tests := []struct {
		name      string
		state     ScanState
		depth     int
		ch        rune
		next      rune
		nextNext  rune
		wantState ScanState
		wantDepth int
		wantAct   ScanAction
	}{
		{"body literal", ScanStateBody, 0, 'a', 'b', 'c', ScanStateBody, 0, ScanActionLiteral},
		{"trigger before word char", ScanStateBody, 0, '@', 'c', 'o', ScanStatePrefix, 0, ScanActionBegin},
		{"trigger before paren", ScanStateBody, 0, '@', '(', '1', ScanStatePrefix, 0, ScanActionBegin},
		{"trigger before trigger", ScanStateBody, 0, '@', '@', 'x', ScanStateEscapedPrefix, 0, ScanActionSkip},
		{"trigger before space", ScanStateBody, 0, '@', ' ', 'x', ScanStateBody, 0, ScanActionLiteral},
		{"trigger at end", ScanStateBody, 0, '@', EOF, EOF, ScanStateBody, 0, ScanActionLiteral},
		{"escaped prefix", ScanStateEscapedPrefix, 0, '@', 'x', EOF, ScanStateBody, 0, ScanActionLiteral},
		{"prefix to identifier", ScanStatePrefix, 0, 'c', 'o', 'n', ScanStateIdentifier, 0, ScanActionAppend},
		{"prefix to balanced", ScanStatePrefix, 0, '(', '1', '+', ScanStateBalanced, 1, ScanActionAppend},
		{"single char identifier", ScanStatePrefix, 0, 'a', ' ', 'b', ScanStateBody, 0, ScanActionComplete},
		{"identifier continues", ScanStateIdentifier, 0, 'a', 'b', ' ', ScanStateIdentifier, 0, ScanActionAppend},
		{"identifier before path dot", ScanStateIdentifier, 0, 'e', '.', 'n', ScanStateIdentifier, 0, ScanActionAppend},
		{"identifier before trailing dot", ScanStateIdentifier, 0, 'e', '.', ' ', ScanStateBody, 0, ScanActionComplete},
		{"identifier before dot at end", ScanStateIdentifier, 0, 'e', '.', EOF, ScanStateBody, 0, ScanActionComplete},
		{"identifier at end", ScanStateIdentifier, 0, 'e', EOF, EOF, ScanStateBody, 0, ScanActionComplete},
		{"identifier dot", ScanStateIdentifier, 0, '.', 'n', 'a', ScanStateIdentifier, 0, ScanActionAppend},
		{"balanced open", ScanStateBalanced, 1, '(', '1', ')', ScanStateBalanced, 2, ScanActionAppend},
		{"balanced inner close", ScanStateBalanced, 2, ')', ')', EOF, ScanStateBalanced, 1, ScanActionAppend},
		{"balanced final close", ScanStateBalanced, 1, ')', ' ', 'x', ScanStateBody, 0, ScanActionComplete},
		{"balanced quote", ScanStateBalanced, 1, '"', '(', '"', ScanStateStringLiteral, 1, ScanActionAppend},
		{"string paren ignored", ScanStateStringLiteral, 1, ')', '"', ')', ScanStateStringLiteral, 1, ScanActionAppend},
		{"string close", ScanStateStringLiteral, 1, '"', ')', EOF, ScanStateBalanced, 1, ScanActionAppend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, depth, action := Step(tt.state, tt.depth, tt.ch, tt.next, tt.nextNext, DefaultTrigger)
			assert.Equal(t, tt.wantState, state, "state")
			assert.Equal(t, tt.wantDepth, depth, "depth")
			assert.Equal(t, tt.wantAct, action, "action")
		})
	}
}

func TestScanner_Scan(t *testing.T) {
	type seg struct {
		kind SegmentKind
		text string
	}
	lit := func(s string) seg { return seg{SegmentKindLiteral, s} }
	expr := func(s string) seg { return seg{SegmentKindExpression, s} }

	tests := []struct {
		name     string
		template string
		expected []seg
	}{
		{"empty", "", nil},
		{"no trigger", "Hello world", []seg{lit("Hello world")}},
		{"escape", "@@", []seg{lit("@")}},
		{"escape before word", "mail me @@home", []seg{lit("mail me @home")}},
		{"identifier", "Hi @contact", []seg{lit("Hi "), expr("@contact")}},
		{"trailing period", "Hi @contact.name.", []seg{lit("Hi "), expr("@contact.name"), lit(".")}},
		{"path continues", "@contact.name.first!", []seg{expr("@contact.name.first"), lit("!")}},
		{"balanced", "@(1 + 2) apples", []seg{expr("@(1 + 2)"), lit(" apples")}},
		{"nested parens", "x@(SUM(1, (2)))y", []seg{lit("x"), expr("@(SUM(1, (2)))"), lit("y")}},
		{"quoted parens", `@(LEN("(a)"))`, []seg{expr(`@(LEN("(a)"))`)}},
		{"lone trigger", "email @ noon", []seg{lit("email @ noon")}},
		{"adjacent", "@a@b", []seg{expr("@a"), expr("@b")}},
		{"unicode literal", "héllo @name ñ", []seg{lit("héllo "), expr("@name"), lit(" ñ")}},
	}

	scanner := NewScanner(DefaultTrigger, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments := scanner.Scan(tt.template)
			var got []seg
			for _, s := range segments {
				got = append(got, seg{s.Kind, s.Text})
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestScanner_UnterminatedTail(t *testing.T) {
	scanner := NewScanner(DefaultTrigger, nil)

	segments := scanner.Scan("Hello @(1+2")

	require.Len(t, segments, 2)
	assert.Equal(t, "Hello ", segments[0].Text)
	assert.False(t, segments[0].Unterminated)
	assert.Equal(t, SegmentKindLiteral, segments[1].Kind)
	assert.Equal(t, "@(1+2", segments[1].Text)
	assert.True(t, segments[1].Unterminated)
}

func TestScanner_UnterminatedString(t *testing.T) {
	scanner := NewScanner(DefaultTrigger, nil)

	segments := scanner.Scan(`a @("b) c`)

	require.Len(t, segments, 2)
	assert.True(t, segments[1].Unterminated)
	assert.Equal(t, `@("b) c`, segments[1].Text)
}

func TestScanner_SpansPartitionInput(t *testing.T) {
	templates := []string{
		"",
		"plain",
		"Hi @contact.name. You have @(contact.reports * 2) reports",
		"@@@name @@ @(\"))\") @(1+",
		"@a.b.c.@d..@e",
		"ünïcödé @x ✓ @(\"✓\")",
	}

	scanner := NewScanner(DefaultTrigger, nil)
	for _, template := range templates {
		t.Run(template, func(t *testing.T) {
			offset := 0
			for _, seg := range scanner.Scan(template) {
				assert.Equal(t, offset, seg.Start)
				assert.Greater(t, seg.End, seg.Start)
				if seg.Kind == SegmentKindExpression || seg.Unterminated {
					assert.Equal(t, template[seg.Start:seg.End], seg.Text)
				}
				offset = seg.End
			}
			assert.Equal(t, len(template), offset)
		})
	}
}

func TestScanner_CustomTrigger(t *testing.T) {
	scanner := NewScanner('=', nil)

	segments := scanner.Scan("a = b, =(1+2) and ==x @contact")

	var texts []string
	for _, seg := range segments {
		texts = append(texts, seg.Text)
	}
	assert.Equal(t, "a = b, |=(1+2)| and =x @contact", strings.Join(texts, "|"))
}

func TestScanner_SegmentsStopsEarly(t *testing.T) {
	scanner := NewScanner(DefaultTrigger, nil)

	var count int
	for range scanner.Segments("@a @b @c") {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}
