// Package jsonrepair recovers a usable JSON object from the loosely
// structured text a generative model returns. Model output is supposed to be
// a single JSON object but in practice arrives wrapped in code fences,
// sprinkled with control characters, trailing commas, inline comments,
// unevaluated arithmetic, or truncated mid-token. Each strategy here is
// cheap and applied in a fixed order; the first parse that succeeds wins.
package jsonrepair

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"
)

// maxQuoteEscapeAttempts bounds the unescaped-quote recovery loop.
const maxQuoteEscapeAttempts = 5

// ErrUnrecoverable is returned when every repair strategy has been
// exhausted. This is a content problem, not a transient one: callers must
// not retry.
var ErrUnrecoverable = eris.New("jsonrepair: unrecoverable model output")

// Repair parses raw as a single JSON object, applying repair strategies in
// order until one yields a valid parse. It returns the decoded object.
func Repair(raw string) (map[string]any, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, eris.Wrap(ErrUnrecoverable, "empty input")
	}

	// Cheap normalizations, applied cumulatively. After each one we probe
	// for validity and short-circuit as soon as the text parses.
	for _, normalize := range []func(string) string{
		stripCodeFence,
		stripControlChars,
		stripTrailingCommas,
		stripInlineComments,
		evalArithmetic,
		closeTruncated,
	} {
		text = normalize(text)
		if gjson.Valid(text) {
			if obj, err := decodeObject(text); err == nil {
				return obj, nil
			}
		}
	}

	// Direct parse of the normalized text.
	if obj, err := decodeObject(text); err == nil {
		return obj, nil
	}

	// Extract the largest brace-delimited span and retry.
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		if obj, err := decodeObject(text[start : end+1]); err == nil {
			return obj, nil
		}
		text = text[start : end+1]
	}

	// An unescaped quote inside a string value closes the string early and
	// produces a "delimiter expected" error downstream. Escape the quote
	// nearest to the reported error offset and retry, bounded.
	for attempt := 0; attempt < maxQuoteEscapeAttempts; attempt++ {
		obj, err := decodeObject(text)
		if err == nil {
			return obj, nil
		}
		var synErr *json.SyntaxError
		if !eris.As(err, &synErr) {
			break
		}
		fixed, ok := escapeQuoteBefore(text, int(synErr.Offset))
		if !ok {
			break
		}
		text = fixed
	}

	return nil, eris.Wrap(ErrUnrecoverable, "all repair strategies exhausted")
}

func decodeObject(text string) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// stripCodeFence removes a leading/trailing markdown code fence.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
	} else {
		return text
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// stripControlChars drops disallowed control characters. Tab, newline and
// carriage return survive; everything else below 0x20 is removed.
func stripControlChars(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// stripTrailingCommas removes a comma that immediately precedes a closing
// brace or bracket, outside string literals.
func stripTrailingCommas(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	inString := false
	escaped := false

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
			b.WriteByte(c)
			continue
		}
		if c == ',' {
			j := i + 1
			for j < len(text) && isSpace(text[j]) {
				j++
			}
			if j < len(text) && (text[j] == '}' || text[j] == ']') {
				continue // drop the comma
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// stripInlineComments removes //-style comments, but only when the comment
// starts immediately after a comma or opening brace/bracket (ignoring
// whitespace). This is deliberately conservative: a false negative leaves a
// comment for a later strategy to choke on, a false positive would corrupt a
// valid string value like a URL.
func stripInlineComments(text string) string {
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
		if c == '/' && i+1 < len(text) && text[i+1] == '/' &&
			(lastSignificant == ',' || lastSignificant == '{' || lastSignificant == '[' || lastSignificant == 0) {
			for i < len(text) && text[i] != '\n' {
				i++
			}
			if i < len(text) {
				b.WriteByte('\n')
			}
			continue
		}
		if !isSpace(c) {
			lastSignificant = c
		}
		b.WriteByte(c)
	}
	return b.String()
}

// closeTruncated repairs output that was cut off mid-token: it closes an
// unterminated string literal, strips a dangling comma or colon, and appends
// the missing closing delimiters innermost-first.
func closeTruncated(text string) string {
	if len(text) == 0 {
		return text
	}

	var stack []byte
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) > 0 && stack[len(stack)-1] == c {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if !inString && len(stack) == 0 {
		return text
	}

	if inString {
		text += `"`
		// If the cut-off string was an object key rather than a value,
		// closing it leaves a key with no colon. Drop it.
		if len(stack) > 0 && stack[len(stack)-1] == '}' {
			text = dropDanglingKey(text)
		}
	}

	// A dangling colon means the last key never got a value: drop both.
	text = strings.TrimRight(text, " \t\n\r")
	if strings.HasSuffix(text, ":") {
		text = strings.TrimRight(text[:len(text)-1], " \t\n\r")
		text = dropDanglingKey(text)
	}
	text = strings.TrimRight(text, " \t\n\r,")

	for i := len(stack) - 1; i >= 0; i-- {
		text = strings.TrimRight(text, " \t\n\r,")
		text += string(stack[i])
	}
	return text
}

// dropDanglingKey removes a trailing quoted string when it sits in key
// position, i.e. preceded by a comma or opening brace.
func dropDanglingKey(text string) string {
	if !strings.HasSuffix(text, `"`) {
		return text
	}
	open := -1
	for i := len(text) - 2; i > 0; i-- {
		if text[i] == '"' && text[i-1] != '\\' {
			open = i
			break
		}
	}
	if open <= 0 {
		return text
	}
	before := strings.TrimRight(text[:open], " \t\n\r")
	if strings.HasSuffix(before, ",") || strings.HasSuffix(before, "{") {
		return before
	}
	return text
}

// escapeQuoteBefore escapes the unescaped double quote nearest before
// offset. Returns the modified text and whether a quote was found.
func escapeQuoteBefore(text string, offset int) (string, bool) {
	if offset > len(text) {
		offset = len(text)
	}
	for i := offset - 1; i > 0; i-- {
		if text[i] == '"' && text[i-1] != '\\' {
			return text[:i] + `\` + text[i:], true
		}
	}
	return text, false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
