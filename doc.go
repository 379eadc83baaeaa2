// Package wexpr implements the Wexpr data serialization format.
//
// Wexpr is a human-friendly, self-describing format in the JSON/S-expression
// family. A document is a single expression tree built from five shapes:
// null, value, binary data, array, and map. The textual syntax supports
// compact barewords alongside quoted strings and base64 binary literals, and
// an in-document alias mechanism where [name] binds a sub-expression and
// *[name] splices an independent deep copy of it elsewhere:
//
//	@(
//		first [val]"name"
//		second *[val]
//	)
//
// Documents also have a binary representation: TLV chunks with UVLQ64
// size prefixes, wrapped in a 20-byte file envelope. [Parse] reads the
// textual form, [ParseBinaryChunk] and [DecodeFile] read the binary forms,
// and [Expression.StringRepresentation] and [Expression.BinaryRepresentation]
// write them back out.
//
// Parse errors are [*Error] values carrying a stable [ErrorCode] and the
// 1-based line/column at which the fault was detected.
package wexpr
