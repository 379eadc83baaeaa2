package wexpr

import "fmt"

// ErrorCode identifies the class of a parse or codec failure.
//
// The numeric values are stable: they match the published error taxonomy and
// new codes are only ever appended.
type ErrorCode int

// Possible error codes.
const (
	ErrorNone ErrorCode = iota
	ErrorStringMissingEndingQuote
	ErrorInvalidUTF8
	ErrorExtraDataAfterParsingRoot
	ErrorEmptyString
	ErrorInvalidStringEscape
	ErrorMapMissingEndParen
	ErrorMapKeyMustBeAValue
	ErrorMapNoValue
	ErrorReferenceMissingEndBracket
	ErrorReferenceInsertMissingEndBracket
	ErrorReferenceUnknownReference
	ErrorArrayMissingEndParen
	ErrorReferenceInvalidName
	ErrorBinaryDataNoEnding
	ErrorBinaryDataInvalidBase64
	ErrorBinaryInvalidHeader
	ErrorBinaryUnknownVersion
	ErrorBinaryMultipleExpressions
	ErrorBinaryChunkBiggerThanData
	ErrorBinaryChunkNotBigEnough
	ErrorBinaryUnknownCompression
)

var errorCodeStrings = map[ErrorCode]string{
	ErrorNone:                             "None",
	ErrorStringMissingEndingQuote:         "StringMissingEndingQuote",
	ErrorInvalidUTF8:                      "InvalidUTF8",
	ErrorExtraDataAfterParsingRoot:        "ExtraDataAfterParsingRoot",
	ErrorEmptyString:                      "EmptyString",
	ErrorInvalidStringEscape:              "InvalidStringEscape",
	ErrorMapMissingEndParen:               "MapMissingEndParen",
	ErrorMapKeyMustBeAValue:               "MapKeyMustBeAValue",
	ErrorMapNoValue:                       "MapNoValue",
	ErrorReferenceMissingEndBracket:       "ReferenceMissingEndBracket",
	ErrorReferenceInsertMissingEndBracket: "ReferenceInsertMissingEndBracket",
	ErrorReferenceUnknownReference:        "ReferenceUnknownReference",
	ErrorArrayMissingEndParen:             "ArrayMissingEndParen",
	ErrorReferenceInvalidName:             "ReferenceInvalidName",
	ErrorBinaryDataNoEnding:               "BinaryDataNoEnding",
	ErrorBinaryDataInvalidBase64:          "BinaryDataInvalidBase64",
	ErrorBinaryInvalidHeader:              "BinaryInvalidHeader",
	ErrorBinaryUnknownVersion:             "BinaryUnknownVersion",
	ErrorBinaryMultipleExpressions:        "BinaryMultipleExpressions",
	ErrorBinaryChunkBiggerThanData:        "BinaryChunkBiggerThanData",
	ErrorBinaryChunkNotBigEnough:          "BinaryChunkNotBigEnough",
	ErrorBinaryUnknownCompression:         "BinaryUnknownCompression",
}

// String returns the stable identifier for the code.
func (c ErrorCode) String() string {
	if s, ok := errorCodeStrings[c]; ok {
		return s
	}

	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

// Error is a parse or codec failure.
//
// Text-parse errors carry the 1-based line and column at which the fault was
// detected. Binary codec errors carry (0, 0).
type Error struct {
	Code    ErrorCode
	Message string
	Line    int
	Column  int
}

// Error implements the error interface, rendering "line:column: message".
func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// newParseError creates an [*Error] at the given source position.
func newParseError(code ErrorCode, message string, line, column int) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Line:    line,
		Column:  column,
	}
}

// newBinaryError creates an [*Error] with no source position.
func newBinaryError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}
