// Copyright (c) 2025 ADBC Drivers Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//         http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package jdbctype

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"cloud.google.com/go/civil"
	"golang.org/x/text/encoding/charmap"
)

// TextDecodeError is the sentinel returned by DecodeText when the wire bytes
// are not valid under any supported character encoding.
const TextDecodeError = "[ERROR]"

// Blob marks a value as a binary large object on the wire.
type Blob []byte

// DecodeFunc converts the wire form of a column value into a Go value.
type DecodeFunc func(b []byte) (any, error)

// Decoders maps every JDBC type code the remote engine is known to emit to
// its decode function. The table is built once and never mutated; codes
// outside this set have no decoder and are left to the transport's default
// handling.
var Decoders = map[TypeCode]DecodeFunc{
	// Numeric codes decode to int64/float64.
	DataTypeBit:      decodeInt,
	DataTypeTinyInt:  decodeInt,
	DataTypeSmallInt: decodeInt,
	DataTypeInteger:  decodeInt,
	DataTypeBigInt:   decodeInt,
	DataTypeReal:     decodeFloat,
	DataTypeDouble:   decodeFloat,
	DataTypeNumeric:  decodeFloat,
	DataTypeDecimal:  decodeFloat,
	DataTypeFloat:    decodeFloat,

	// Character codes decode through the charset fallback chain.
	DataTypeChar:         decodeText,
	DataTypeVarChar:      decodeText,
	DataTypeLongVarChar:  decodeText,
	DataTypeClob:         decodeText,
	DataTypeNClob:        decodeText,
	DataTypeNChar:        decodeText,
	DataTypeNVarChar:     decodeText,
	DataTypeLongNVarChar: decodeText,

	// Temporal codes parse from their canonical string forms.
	DataTypeDate:      decodeDate,
	DataTypeTime:      decodeClock,
	DataTypeTimestamp: decodeTimestamp,

	// Binary codes wrap the raw bytes.
	DataTypeBinary:        decodeBlob,
	DataTypeVarBinary:     decodeBlob,
	DataTypeLongVarBinary: decodeBlob,
	DataTypeBlob:          decodeBlob,

	// Exotic codes the engine emits rarely; best-effort text decode.
	DataTypeArray:      decodeText,
	DataTypeNull:       decodeText,
	DataTypeOther:      decodeText,
	DataTypeJavaObject: decodeText,
	DataTypeDistinct:   decodeText,
	DataTypeStruct:     decodeText,
	DataTypeRef:        decodeText,
	DataTypeDatalink:   decodeText,
	DataTypeBoolean:    decodeText,
	DataTypeRowID:      decodeText,
	DataTypeSqlXml:     decodeText,
}

// Decode converts wire bytes tagged with the given type code.
// Returns ok == false when the code has no table entry.
func Decode(code TypeCode, b []byte) (v any, ok bool, err error) {
	fn, ok := Decoders[code]
	if !ok {
		return nil, false, nil
	}
	v, err = fn(b)
	return v, true, err
}

// Encode stringifies a Go value into the wire form the remote engine
// expects for statement parameters. Dispatch is by native type; this is the
// outbound half of the converter table.
func Encode(v any) (string, error) {
	switch x := v.(type) {
	case bool:
		if x {
			return "1", nil
		}
		return "0", nil
	case int:
		return strconv.FormatInt(int64(x), 10), nil
	case int8:
		return strconv.FormatInt(int64(x), 10), nil
	case int16:
		return strconv.FormatInt(int64(x), 10), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case Blob:
		return string(x), nil
	case civil.Date:
		return x.String(), nil
	case civil.Time:
		return x.String(), nil
	case time.Time:
		return x.Format("2006-01-02 15:04:05.000000"), nil
	case []any:
		return encodeTuple(x)
	case nil:
		return "", fmt.Errorf("jdbctype: cannot encode nil parameter")
	default:
		return "", fmt.Errorf("jdbctype: no encoder for %T", v)
	}
}

// encodeTuple joins element encodings; used for multi-valued parameters.
func encodeTuple(vals []any) (string, error) {
	parts := make([]string, len(vals))
	for i, v := range vals {
		s, err := Encode(v)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, ","), nil
}

// DecodeText decodes wire bytes as UTF-8, falling back to Latin-1, and
// finally to the TextDecodeError sentinel. It never fails; garbage input
// degrades to the sentinel rather than aborting the row.
func DecodeText(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return TextDecodeError
	}
	return string(s)
}

func decodeText(b []byte) (any, error) {
	return DecodeText(b), nil
}

func decodeInt(b []byte) (any, error) {
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("jdbctype: bad integer %q: %w", b, err)
	}
	return n, nil
}

func decodeFloat(b []byte) (any, error) {
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return nil, fmt.Errorf("jdbctype: bad float %q: %w", b, err)
	}
	return f, nil
}

func decodeBlob(b []byte) (any, error) {
	return Blob(b), nil
}

func decodeDate(b []byte) (any, error) {
	d, err := civil.ParseDate(string(b))
	if err != nil {
		return nil, fmt.Errorf("jdbctype: bad date %q: %w", b, err)
	}
	return d, nil
}

func decodeClock(b []byte) (any, error) {
	s := string(b)
	for _, layout := range []string{"15:04:05.999999999", "15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.TimeOf(t), nil
		}
	}
	return nil, fmt.Errorf("jdbctype: bad time %q", b)
}

func decodeTimestamp(b []byte) (any, error) {
	s := string(b)
	layouts := []string{
		"2006-01-02 15:04:05.999999",
		"2006-01-02 15:04:05",
		time.RFC3339,
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return nil, fmt.Errorf("jdbctype: bad timestamp %q", b)
}
