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
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodersCoverAllCodes(t *testing.T) {
	codes := []TypeCode{
		DataTypeArray, DataTypeBigInt, DataTypeBinary, DataTypeBit,
		DataTypeBlob, DataTypeBoolean, DataTypeChar, DataTypeClob,
		DataTypeDatalink, DataTypeDate, DataTypeDecimal, DataTypeDistinct,
		DataTypeDouble, DataTypeFloat, DataTypeInteger, DataTypeJavaObject,
		DataTypeLongNVarChar, DataTypeLongVarBinary, DataTypeLongVarChar,
		DataTypeNChar, DataTypeNClob, DataTypeNull, DataTypeNumeric,
		DataTypeNVarChar, DataTypeOther, DataTypeReal, DataTypeRef,
		DataTypeRowID, DataTypeSmallInt, DataTypeSqlXml, DataTypeStruct,
		DataTypeTime, DataTypeTimestamp, DataTypeTinyInt, DataTypeVarBinary,
		DataTypeVarChar,
	}
	for _, code := range codes {
		assert.Contains(t, Decoders, code, "no decoder for code %d", code)
	}
}

func TestDecodeNumeric(t *testing.T) {
	v, ok, err := Decode(DataTypeInteger, []byte("42"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(42), v)

	v, ok, err = Decode(DataTypeBigInt, []byte("-9223372036854775808"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(-9223372036854775808), v)

	v, ok, err = Decode(DataTypeDouble, []byte("3.25"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3.25, v)

	_, ok, err = Decode(DataTypeInteger, []byte("not a number"))
	require.True(t, ok)
	assert.Error(t, err)
}

func TestDecodeUnknownCode(t *testing.T) {
	v, ok, err := Decode(TypeCode(9999), []byte("whatever"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestDecodeTemporal(t *testing.T) {
	v, ok, err := Decode(DataTypeDate, []byte("2014-07-15"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, civil.Date{Year: 2014, Month: time.July, Day: 15}, v)

	v, ok, err = Decode(DataTypeTime, []byte("13:45:30"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, civil.Time{Hour: 13, Minute: 45, Second: 30}, v)

	v, ok, err = Decode(DataTypeTimestamp, []byte("2014-07-15 13:45:30.123456"))
	require.NoError(t, err)
	require.True(t, ok)
	ts, isTime := v.(time.Time)
	require.True(t, isTime)
	assert.Equal(t, 2014, ts.Year())
	assert.Equal(t, 123456000, ts.Nanosecond())

	_, _, err = Decode(DataTypeDate, []byte("15/07/2014"))
	assert.Error(t, err)
}

func TestDecodeBlob(t *testing.T) {
	v, ok, err := Decode(DataTypeBlob, []byte{0x00, 0xff, 0x10})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Blob{0x00, 0xff, 0x10}, v)
}

func TestDecodeText(t *testing.T) {
	// Valid UTF-8 passes through untouched.
	assert.Equal(t, "café", DecodeText([]byte("café")))

	// Latin-1 bytes fall back to the Latin-1 decoder.
	assert.Equal(t, "café", DecodeText([]byte{'c', 'a', 'f', 0xe9}))

	assert.Equal(t, "", DecodeText(nil))
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"true", true, "1"},
		{"false", false, "0"},
		{"int", 17, "17"},
		{"int64", int64(-5), "-5"},
		{"uint64", uint64(18446744073709551615), "18446744073709551615"},
		{"float64", 2.5, "2.5"},
		{"string", "hello", "hello"},
		{"bytes", []byte("raw"), "raw"},
		{"blob", Blob("bin"), "bin"},
		{"date", civil.Date{Year: 2014, Month: time.July, Day: 15}, "2014-07-15"},
		{"time", civil.Time{Hour: 13, Minute: 45, Second: 30}, "13:45:30"},
		{
			"timestamp",
			time.Date(2014, 7, 15, 13, 45, 30, 123456000, time.UTC),
			"2014-07-15 13:45:30.123456",
		},
		{"tuple", []any{1, "two", 3.5}, "1,two,3.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeUnsupported(t *testing.T) {
	_, err := Encode(nil)
	assert.Error(t, err)

	_, err = Encode(struct{}{})
	assert.Error(t, err)

	_, err = Encode([]any{1, struct{}{}})
	assert.Error(t, err)
}
