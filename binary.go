package wexpr

import (
	"bytes"
	"encoding/binary"
	"log/slog"
)

// Binary chunk type codes.
const (
	chunkTypeNull       = 0x00
	chunkTypeValue      = 0x01
	chunkTypeArray      = 0x02
	chunkTypeMap        = 0x03
	chunkTypeBinaryData = 0x04
)

// compressionRaw is the only defined compression code for binary-data
// chunks.
const compressionRaw = 0x00

// FileVersion is the binary format version written to and accepted from
// the file envelope.
const FileVersion = 0x00001000

// fileMagic is the first 8 bytes of every binary Wexpr file.
var fileMagic = []byte{0x83, 'B', 'W', 'E', 'X', 'P', 'R', 0x0A}

// fileHeaderSize is the byte length of the file envelope: magic, a
// big-endian u32 version, and 8 reserved zero bytes.
const fileHeaderSize = 20

// BinaryRepresentation serializes the expression as a single binary chunk:
// a UVLQ64 payload size, a type byte, and the payload.
func (e *Expression) BinaryRepresentation() []byte {
	return e.appendBinaryTo(nil)
}

func (e *Expression) appendBinaryTo(dst []byte) []byte {
	switch e.Type() {
	case TypeNull:
		dst = AppendUVLQ64(dst, 0)
		dst = append(dst, chunkTypeNull)

	case TypeValue:
		dst = AppendUVLQ64(dst, uint64(len(e.value)))
		dst = append(dst, chunkTypeValue)
		dst = append(dst, e.value...)

	case TypeArray:
		var contents []byte
		for _, child := range e.arrayChildren {
			contents = child.appendBinaryTo(contents)
		}

		dst = AppendUVLQ64(dst, uint64(len(contents)))
		dst = append(dst, chunkTypeArray)
		dst = append(dst, contents...)

	case TypeMap:
		var contents []byte
		for _, key := range e.mapKeys {
			contents = AppendUVLQ64(contents, uint64(len(key)))
			contents = append(contents, chunkTypeValue)
			contents = append(contents, key...)

			contents = e.mapValues[key].appendBinaryTo(contents)
		}

		dst = AppendUVLQ64(dst, uint64(len(contents)))
		dst = append(dst, chunkTypeMap)
		dst = append(dst, contents...)

	case TypeBinaryData:
		dst = AppendUVLQ64(dst, uint64(len(e.binaryData))+1)
		dst = append(dst, chunkTypeBinaryData, compressionRaw)
		dst = append(dst, e.binaryData...)
	}

	return dst
}

// ParseBinaryChunk reads a single binary chunk from the front of data.
// Bytes past the chunk are ignored.
func ParseBinaryChunk(data []byte) (*Expression, error) {
	expr, _, perr := decodeChunk(data)
	if perr != nil {
		return nil, perr
	}

	return expr, nil
}

// decodeChunk reads one chunk, returning the expression and the total
// number of bytes the chunk occupied.
func decodeChunk(buf []byte) (*Expression, int, *Error) {
	size, sizeLen, err := ReadUVLQ64(buf)
	if err != nil {
		return nil, 0, newBinaryError(ErrorBinaryChunkNotBigEnough, "chunk not big enough for header")
	}

	if sizeLen >= len(buf) {
		return nil, 0, newBinaryError(ErrorBinaryChunkNotBigEnough, "chunk not big enough for header")
	}

	chunkType := buf[sizeLen]
	headerLen := sizeLen + 1

	if size > uint64(len(buf)-headerLen) {
		return nil, 0, newBinaryError(ErrorBinaryChunkBiggerThanData,
			"chunk size said to expand past the buffer size")
	}

	payload := buf[headerLen : headerLen+int(size)]
	total := headerLen + int(size)

	switch chunkType {
	case chunkTypeNull:
		return NewNull(), total, nil

	case chunkTypeValue:
		return NewValue(string(payload)), total, nil

	case chunkTypeArray:
		expr := NewArray()

		for pos := 0; pos < len(payload); {
			child, n, perr := decodeChunk(payload[pos:])
			if perr != nil {
				return nil, 0, perr
			}

			expr.ArrayAppend(child)
			pos += n
		}

		return expr, total, nil

	case chunkTypeMap:
		expr := NewMap()

		for pos := 0; pos < len(payload); {
			key, n, perr := decodeChunk(payload[pos:])
			if perr != nil {
				return nil, 0, perr
			}

			pos += n

			if key.Type() != TypeValue {
				return nil, 0, newBinaryError(ErrorBinaryChunkNotBigEnough,
					"map key chunk must be a value")
			}

			value, n, perr := decodeChunk(payload[pos:])
			if perr != nil {
				return nil, 0, perr
			}

			pos += n

			expr.MapSet(key.Value(), value)
		}

		return expr, total, nil

	case chunkTypeBinaryData:
		if size < 1 {
			return nil, 0, newBinaryError(ErrorBinaryChunkNotBigEnough,
				"binary data chunk missing its compression byte")
		}

		if payload[0] != compressionRaw {
			return nil, 0, newBinaryError(ErrorBinaryUnknownCompression,
				"unknown compression method to use")
		}

		return NewBinaryData(payload[1:]), total, nil

	default:
		return nil, 0, newBinaryError(ErrorBinaryChunkNotBigEnough, "unknown chunk type to read")
	}
}

// EncodeFile serializes the expression as a complete binary Wexpr file:
// the 20-byte envelope followed by one expression chunk.
func EncodeFile(e *Expression) []byte {
	out := make([]byte, 0, fileHeaderSize)
	out = append(out, fileMagic...)
	out = binary.BigEndian.AppendUint32(out, FileVersion)
	out = append(out, make([]byte, 8)...)

	return e.appendBinaryTo(out)
}

// DecodeFile reads a complete binary Wexpr file: it checks the envelope,
// decodes the one expression chunk, and skips auxiliary chunks with unknown
// type codes (warning through slog). Exactly one expression chunk is
// expected per file.
func DecodeFile(data []byte) (*Expression, error) {
	if len(data) < fileHeaderSize {
		return nil, newBinaryError(ErrorBinaryInvalidHeader, "invalid binary header - not big enough")
	}

	if !bytes.Equal(data[:len(fileMagic)], fileMagic) {
		return nil, newBinaryError(ErrorBinaryInvalidHeader, "invalid binary header - invalid magic")
	}

	if binary.BigEndian.Uint32(data[8:12]) != FileVersion {
		return nil, newBinaryError(ErrorBinaryUnknownVersion, "invalid binary header - unknown version")
	}

	if !bytes.Equal(data[12:fileHeaderSize], make([]byte, 8)) {
		return nil, newBinaryError(ErrorBinaryInvalidHeader, "invalid binary header - reserved bits set")
	}

	var expr *Expression

	for pos := fileHeaderSize; pos < len(data); {
		size, sizeLen, err := ReadUVLQ64(data[pos:])
		if err != nil {
			return nil, newBinaryError(ErrorBinaryChunkNotBigEnough, "chunk not big enough for header")
		}

		if pos+sizeLen >= len(data) {
			return nil, newBinaryError(ErrorBinaryChunkNotBigEnough, "chunk not big enough for header")
		}

		chunkType := data[pos+sizeLen]

		chunkTotal := sizeLen + 1 + int(size)
		if size > uint64(len(data)-pos-sizeLen-1) {
			return nil, newBinaryError(ErrorBinaryChunkBiggerThanData,
				"chunk size said to expand past the buffer size")
		}

		if chunkType <= chunkTypeBinaryData {
			if expr != nil {
				return nil, newBinaryError(ErrorBinaryMultipleExpressions,
					"found multiple expression chunks")
			}

			var perr *Error

			expr, _, perr = decodeChunk(data[pos : pos+chunkTotal])
			if perr != nil {
				return nil, perr
			}
		} else {
			slog.Warn("skipping unknown auxiliary chunk",
				slog.Int("type", int(chunkType)),
				slog.Int("offset", pos),
			)
		}

		pos += chunkTotal
	}

	if expr == nil {
		return nil, newBinaryError(ErrorBinaryChunkNotBigEnough, "no expression chunk in file")
	}

	return expr, nil
}
