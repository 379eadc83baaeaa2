package wexpr

import (
	"encoding/base64"
	"strings"
)

const (
	startBlockComment = ";(--"
	endBlockComment   = "--)"
)

// ParseOption configures a [Parse] call.
type ParseOption func(*parseConfig)

type parseConfig struct {
	externalRefs *ReferenceTable
}

// WithReferenceTable supplies an external reference table consulted when a
// *[name] splice is not found among the document's own [name] bindings. The
// table is read during the parse and must not be mutated concurrently.
func WithReferenceTable(rt *ReferenceTable) ParseOption {
	return func(c *parseConfig) {
		c.externalRefs = rt
	}
}

// parserState tracks the 1-based source position and the alias table for a
// single parse. It lives only for the duration of that parse.
type parserState struct {
	line   int
	column int

	aliases      *ReferenceTable
	externalRefs *ReferenceTable
}

// Parse reads a single Wexpr expression from UTF-8 text. Trailing
// whitespace and comments after the root expression are allowed; any other
// trailing bytes fail with [ErrorExtraDataAfterParsingRoot].
func Parse(data []byte, opts ...ParseOption) (*Expression, error) {
	var cfg parseConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	state := &parserState{
		line:         1,
		column:       1,
		aliases:      NewReferenceTable(),
		externalRefs: cfg.externalRefs,
	}

	input := string(data)
	if input == "" {
		return nil, newParseError(ErrorEmptyString, "was told to parse an empty string", state.line, state.column)
	}

	expr := newInvalid()

	rest, perr := state.parseExpression(expr, input)
	if perr != nil {
		return nil, perr
	}

	rest = state.trimFront(rest)
	if rest != "" {
		return nil, newParseError(ErrorExtraDataAfterParsingRoot,
			"extra data after parsing the root expression", state.line, state.column)
	}

	if expr.Type() == TypeInvalid {
		return nil, newParseError(ErrorEmptyString, "no expression found", state.line, state.column)
	}

	return expr, nil
}

// advance moves the source position over every byte of s. Only '\n' starts
// a new line; all other bytes advance the column.
func (s *parserState) advance(str string) {
	for i := 0; i < len(str); i++ {
		if str[i] == '\n' {
			s.line++
			s.column = 1
		} else {
			s.column++
		}
	}
}

// positionAfter returns the position the parser would be at after consuming
// prefix, without moving.
func (s *parserState) positionAfter(prefix string) (int, int) {
	line, column := s.line, s.column

	for i := 0; i < len(prefix); i++ {
		if prefix[i] == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}

	return line, column
}

func isNewline(c byte) bool {
	return c == '\r' || c == '\n'
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || isNewline(c)
}

// isNotBarewordSafe reports whether c terminates a bareword.
func isNotBarewordSafe(c byte) bool {
	switch c {
	case '*', '#', '@', '(', ')', '[', ']', '^', '<', '>', '"', ';':
		return true
	}

	return isWhitespace(c)
}

// trimFront removes whitespace and comments from the front of str, keeping
// the source position in sync.
func (s *parserState) trimFront(str string) string {
	for str != "" {
		first := str[0]

		switch {
		case isWhitespace(first):
			s.advance(str[:1])
			str = str[1:]

		case first == ';':
			var end, skip int

			if strings.HasPrefix(str, startBlockComment) {
				end = strings.Index(str, endBlockComment)
				skip = len(endBlockComment)
			} else {
				end = strings.IndexByte(str, '\n')
				skip = 1
			}

			if end < 0 {
				// comment runs to the end of input
				s.advance(str)

				return ""
			}

			s.advance(str[:end+skip])
			str = str[end+skip:]

		default:
			return str
		}
	}

	return str
}

// parseExpression reads one expression from the front of str into e and
// returns the unconsumed remainder. On a clean end-of-input with nothing
// parsed, e stays invalid and no error is returned; the caller decides
// whether that is a fault.
func (s *parserState) parseExpression(e *Expression, str string) (string, *Error) {
	str = s.trimFront(str)
	if str == "" {
		return "", nil
	}

	switch {
	case strings.HasPrefix(str, "#("):
		return s.parseArray(e, str)

	case strings.HasPrefix(str, "@("):
		return s.parseMap(e, str)

	case strings.HasPrefix(str, "*["):
		return s.parseReferenceInsert(e, str)

	case str[0] == '[':
		return s.parseReference(e, str)

	case str[0] == '<':
		return s.parseBinaryData(e, str)

	default:
		return s.parseValue(e, str)
	}
}

func (s *parserState) parseArray(e *Expression, str string) (string, *Error) {
	e.ChangeType(TypeArray)

	s.advance(str[:2])
	str = str[2:]

	for {
		str = s.trimFront(str)
		if str == "" {
			return "", newParseError(ErrorArrayMissingEndParen,
				"an array was missing its ending paren", s.line, s.column)
		}

		if str[0] == ')' {
			break
		}

		child := newInvalid()

		var perr *Error

		str, perr = s.parseExpression(child, str)
		if perr != nil {
			return "", perr
		}

		if child.Type() == TypeInvalid {
			// input ran out mid-array; the next loop turn reports it
			continue
		}

		e.ArrayAppend(child)
	}

	s.advance(str[:1])

	return str[1:], nil
}

func (s *parserState) parseMap(e *Expression, str string) (string, *Error) {
	e.ChangeType(TypeMap)

	s.advance(str[:2])
	str = str[2:]

	for {
		str = s.trimFront(str)
		if str == "" {
			return "", newParseError(ErrorMapMissingEndParen,
				"a map was missing its ending paren", s.line, s.column)
		}

		if str[0] == ')' {
			break
		}

		// keep the key position in case the pair turns out bad
		keyLine, keyColumn := s.line, s.column

		key := newInvalid()

		var perr *Error

		str, perr = s.parseExpression(key, str)
		if perr != nil {
			return "", perr
		}

		if key.Type() != TypeValue {
			return "", newParseError(ErrorMapKeyMustBeAValue,
				"map keys must be a value", keyLine, keyColumn)
		}

		str = s.trimFront(str)
		if str == "" {
			return "", newParseError(ErrorMapMissingEndParen,
				"a map was missing its ending paren", s.line, s.column)
		}

		if str[0] == ')' {
			return "", newParseError(ErrorMapNoValue,
				"map key must have a value", keyLine, keyColumn)
		}

		value := newInvalid()

		str, perr = s.parseExpression(value, str)
		if perr != nil {
			return "", perr
		}

		if value.Type() == TypeInvalid {
			return "", newParseError(ErrorMapNoValue,
				"map key must have a value", keyLine, keyColumn)
		}

		e.MapSet(key.Value(), value)
	}

	s.advance(str[:1])

	return str[1:], nil
}

// parseReference handles a [name] binding: the next expression is parsed in
// place, and a deep copy of its result is stored in the alias table for
// later *[name] splices.
func (s *parserState) parseReference(e *Expression, str string) (string, *Error) {
	end := strings.IndexByte(str, ']')
	if end < 0 {
		return "", newParseError(ErrorReferenceMissingEndBracket,
			"a reference [] is missing its ending bracket", s.line, s.column)
	}

	name := str[1:end]
	if !isValidReferenceName(name) {
		return "", newParseError(ErrorReferenceInvalidName,
			"a reference doesn't have a valid name", s.line, s.column)
	}

	s.advance(str[:end+1])
	str = str[end+1:]

	rest, perr := s.parseExpression(e, str)
	if perr != nil {
		return "", perr
	}

	s.aliases.Set(name, e.Copy())

	return rest, nil
}

// parseReferenceInsert handles a *[name] splice: a deep copy of the bound
// expression replaces the splice site. The document's own aliases win over
// the external fallback table.
func (s *parserState) parseReferenceInsert(e *Expression, str string) (string, *Error) {
	end := strings.IndexByte(str, ']')
	if end < 0 {
		return "", newParseError(ErrorReferenceInsertMissingEndBracket,
			"a reference insert *[] is missing its ending bracket", s.line, s.column)
	}

	name := str[2:end]

	s.advance(str[:end+1])
	str = str[end+1:]

	bound := s.aliases.Get(name)
	if bound == nil && s.externalRefs != nil {
		bound = s.externalRefs.Get(name)
	}

	if bound == nil {
		return "", newParseError(ErrorReferenceUnknownReference,
			"tried to insert a reference, but couldn't find it", s.line, s.column)
	}

	*e = *bound.Copy()

	return str, nil
}

func (s *parserState) parseBinaryData(e *Expression, str string) (string, *Error) {
	end := strings.IndexByte(str, '>')
	if end < 0 {
		return "", newParseError(ErrorBinaryDataNoEnding,
			"tried to find the ending > for binary data, but not found", s.line, s.column)
	}

	encoded := str[1:end]

	// strict alphabet: encoding/base64 would forgive interior newlines
	for i := 0; i < len(encoded); i++ {
		if !isBase64Byte(encoded[i]) {
			return "", newParseError(ErrorBinaryDataInvalidBase64,
				"unable to decode the base64 data", s.line, s.column)
		}
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", newParseError(ErrorBinaryDataInvalidBase64,
			"unable to decode the base64 data", s.line, s.column)
	}

	e.ChangeType(TypeBinaryData)
	e.binaryData = decoded

	s.advance(str[:end+1])

	return str[end+1:], nil
}

func isBase64Byte(c byte) bool {
	return (c >= 'A' && c <= 'Z') ||
		(c >= 'a' && c <= 'z') ||
		(c >= '0' && c <= '9') ||
		c == '+' || c == '/' || c == '='
}

// parseValue reads a quoted or bareword value. Barewords spelled exactly
// null or nil become null expressions.
func (s *parserState) parseValue(e *Expression, str string) (string, *Error) {
	if str[0] == '"' {
		return s.parseQuotedValue(e, str)
	}

	n := 0
	for n < len(str) && !isNotBarewordSafe(str[n]) {
		n++
	}

	if n == 0 {
		return "", newParseError(ErrorEmptyString,
			"was told to parse an empty string", s.line, s.column)
	}

	word := str[:n]

	if word == "null" || word == "nil" {
		e.ChangeType(TypeNull)
	} else {
		e.ChangeType(TypeValue)
		e.value = word
	}

	s.advance(word)

	return str[n:], nil
}

func (s *parserState) parseQuotedValue(e *Expression, str string) (string, *Error) {
	var sb strings.Builder

	for i := 1; i < len(str); i++ {
		c := str[i]

		switch c {
		case '"':
			e.ChangeType(TypeValue)
			e.value = sb.String()

			s.advance(str[:i+1])

			return str[i+1:], nil

		case '\\':
			if i+1 >= len(str) {
				line, column := s.positionAfter(str)

				return "", newParseError(ErrorStringMissingEndingQuote,
					"a quoted string is missing its ending quote", line, column)
			}

			i++

			escaped, ok := valueForEscape(str[i])
			if !ok {
				line, column := s.positionAfter(str[:i])

				return "", newParseError(ErrorInvalidStringEscape,
					"invalid escape found in the string", line, column)
			}

			sb.WriteByte(escaped)

		default:
			sb.WriteByte(c)
		}
	}

	line, column := s.positionAfter(str)

	return "", newParseError(ErrorStringMissingEndingQuote,
		"a quoted string is missing its ending quote", line, column)
}

func valueForEscape(c byte) (byte, bool) {
	switch c {
	case '"':
		return '"', true
	case '\\':
		return '\\', true
	case 'r':
		return '\r', true
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	}

	return 0, false
}

func isValidReferenceName(name string) bool {
	if name == "" {
		return false
	}

	for i := 0; i < len(name); i++ {
		c := name[i]

		isAlpha := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		isDigit := c >= '0' && c <= '9'
		isUnder := c == '_'

		if i == 0 {
			if !isAlpha && !isUnder {
				return false
			}
		} else if !isAlpha && !isDigit && !isUnder {
			return false
		}
	}

	return true
}
