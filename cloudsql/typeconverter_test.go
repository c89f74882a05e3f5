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

package cloudsql

import (
	"strconv"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adbc-drivers/cloudsql-go/jdbctype"
)

// taggedField builds a result-set field carrying a JDBC type code, the way
// ConvertColumnType tags columns.
func taggedField(name string, code jdbctype.TypeCode, dt arrow.DataType) arrow.Field {
	return arrow.Field{
		Name:     name,
		Type:     dt,
		Nullable: true,
		Metadata: arrow.MetadataFrom(map[string]string{
			MetaKeyJDBCType: strconv.Itoa(int(code)),
		}),
	}
}

func TestArrowTypeForCode(t *testing.T) {
	tests := []struct {
		code jdbctype.TypeCode
		want arrow.DataType
	}{
		{jdbctype.DataTypeTinyInt, arrow.PrimitiveTypes.Int8},
		{jdbctype.DataTypeSmallInt, arrow.PrimitiveTypes.Int16},
		{jdbctype.DataTypeInteger, arrow.PrimitiveTypes.Int32},
		{jdbctype.DataTypeBigInt, arrow.PrimitiveTypes.Int64},
		{jdbctype.DataTypeReal, arrow.PrimitiveTypes.Float32},
		{jdbctype.DataTypeDouble, arrow.PrimitiveTypes.Float64},
		{jdbctype.DataTypeDecimal, arrow.PrimitiveTypes.Float64},
		{jdbctype.DataTypeNumeric, arrow.PrimitiveTypes.Float64},
		{jdbctype.DataTypeDate, arrow.FixedWidthTypes.Date32},
		{jdbctype.DataTypeTime, arrow.FixedWidthTypes.Time64us},
		{jdbctype.DataTypeTimestamp, arrow.FixedWidthTypes.Timestamp_us},
		{jdbctype.DataTypeBlob, arrow.BinaryTypes.Binary},
		{jdbctype.DataTypeVarChar, arrow.BinaryTypes.String},
		{jdbctype.DataTypeOther, arrow.BinaryTypes.String},
	}
	for _, tt := range tests {
		assert.True(t, arrow.TypeEqual(tt.want, arrowTypeForCode(tt.code)),
			"code %d", tt.code)
	}
}

func TestColumnTypeCodes(t *testing.T) {
	assert.Equal(t, jdbctype.DataTypeInteger, columnTypeCodes["INT"])
	assert.Equal(t, jdbctype.DataTypeVarChar, columnTypeCodes["VARCHAR"])
	assert.Equal(t, jdbctype.DataTypeDecimal, columnTypeCodes["DECIMAL"])
	assert.Equal(t, jdbctype.DataTypeTimestamp, columnTypeCodes["DATETIME"])
	_, ok := columnTypeCodes["GEOMETRY"]
	assert.False(t, ok)
}

func TestFieldTypeCode(t *testing.T) {
	f := taggedField("n", jdbctype.DataTypeInteger, arrow.PrimitiveTypes.Int32)
	code, ok := fieldTypeCode(&f)
	require.True(t, ok)
	assert.Equal(t, jdbctype.DataTypeInteger, code)

	plain := arrow.Field{Name: "n", Type: arrow.PrimitiveTypes.Int32}
	_, ok = fieldTypeCode(&plain)
	assert.False(t, ok)

	_, ok = fieldTypeCode(nil)
	assert.False(t, ok)
}

func TestConvertSQLToArrowDecodesWireBytes(t *testing.T) {
	conv := newTypeConverter(jdbctype.Decoders)

	intField := taggedField("n", jdbctype.DataTypeInteger, arrow.PrimitiveTypes.Int32)
	v, err := conv.ConvertSQLToArrow([]byte("42"), &intField)
	require.NoError(t, err)
	assert.Equal(t, int32(42), v)

	floatField := taggedField("f", jdbctype.DataTypeDouble, arrow.PrimitiveTypes.Float64)
	v, err = conv.ConvertSQLToArrow([]byte("3.25"), &floatField)
	require.NoError(t, err)
	assert.Equal(t, 3.25, v)

	// Latin-1 wire bytes decode through the charset fallback.
	textField := taggedField("s", jdbctype.DataTypeVarChar, arrow.BinaryTypes.String)
	v, err = conv.ConvertSQLToArrow([]byte{'c', 'a', 'f', 0xe9}, &textField)
	require.NoError(t, err)
	assert.Equal(t, "café", v)

	blobField := taggedField("b", jdbctype.DataTypeBlob, arrow.BinaryTypes.Binary)
	v, err = conv.ConvertSQLToArrow([]byte{0x00, 0xff}, &blobField)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xff}, v)

	dateField := taggedField("d", jdbctype.DataTypeDate, arrow.FixedWidthTypes.Date32)
	v, err = conv.ConvertSQLToArrow([]byte("2014-07-15"), &dateField)
	require.NoError(t, err)
	want := arrow.Date32FromTime(time.Date(2014, 7, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, want, v)

	timeField := taggedField("t", jdbctype.DataTypeTime, arrow.FixedWidthTypes.Time64us)
	v, err = conv.ConvertSQLToArrow([]byte("13:45:30"), &timeField)
	require.NoError(t, err)
	assert.Equal(t, arrow.Time64(13*3600+45*60+30)*1_000_000, v)

	tsField := taggedField("ts", jdbctype.DataTypeTimestamp, arrow.FixedWidthTypes.Timestamp_us)
	v, err = conv.ConvertSQLToArrow([]byte("2014-07-15 13:45:30.123456"), &tsField)
	require.NoError(t, err)
	ts, isTime := v.(time.Time)
	require.True(t, isTime)
	assert.Equal(t, 123456000, ts.Nanosecond())
}

func TestConvertSQLToArrowNil(t *testing.T) {
	conv := newTypeConverter(jdbctype.Decoders)
	f := taggedField("n", jdbctype.DataTypeInteger, arrow.PrimitiveTypes.Int32)
	v, err := conv.ConvertSQLToArrow(nil, &f)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestConvertSQLToArrowWithoutDecoders(t *testing.T) {
	// The sandbox installs no converter table; raw driver values coerce
	// directly to the field type.
	conv := newTypeConverter(nil)

	f := arrow.Field{Name: "n", Type: arrow.PrimitiveTypes.Int64}
	v, err := conv.ConvertSQLToArrow(int64(7), &f)
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)

	s := arrow.Field{Name: "s", Type: arrow.BinaryTypes.String}
	v, err = conv.ConvertSQLToArrow([]byte("plain"), &s)
	require.NoError(t, err)
	assert.Equal(t, "plain", v)
}

func TestConvertSQLToArrowBadWireValue(t *testing.T) {
	conv := newTypeConverter(jdbctype.Decoders)
	f := taggedField("n", jdbctype.DataTypeInteger, arrow.PrimitiveTypes.Int32)
	_, err := conv.ConvertSQLToArrow([]byte("not a number"), &f)
	assert.Error(t, err)
}

func TestConvertGoToWire(t *testing.T) {
	conv := newTypeConverter(jdbctype.Decoders)

	v, err := conv.ConvertGoToWire(int64(42))
	require.NoError(t, err)
	assert.Equal(t, "42", v)

	v, err = conv.ConvertGoToWire(true)
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	v, err = conv.ConvertGoToWire(nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = conv.ConvertGoToWire(struct{}{})
	assert.Error(t, err)

	// Without a table the parameter passes through untouched.
	passthrough := newTypeConverter(nil)
	v, err = passthrough.ConvertGoToWire(int64(42))
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

func TestConvertArrowToGo(t *testing.T) {
	alloc := memory.NewGoAllocator()
	conv := newTypeConverter(jdbctype.Decoders)

	ib := array.NewInt64Builder(alloc)
	defer ib.Release()
	ib.Append(99)
	ib.AppendNull()
	ints := ib.NewInt64Array()
	defer ints.Release()

	f := arrow.Field{Name: "n", Type: arrow.PrimitiveTypes.Int64, Nullable: true}
	v, err := conv.ConvertArrowToGo(ints, 0, &f)
	require.NoError(t, err)
	assert.Equal(t, int64(99), v)

	v, err = conv.ConvertArrowToGo(ints, 1, &f)
	require.NoError(t, err)
	assert.Nil(t, v)

	sb := array.NewStringBuilder(alloc)
	defer sb.Release()
	sb.Append("hello")
	strs := sb.NewStringArray()
	defer strs.Release()

	sf := arrow.Field{Name: "s", Type: arrow.BinaryTypes.String}
	v, err = conv.ConvertArrowToGo(strs, 0, &sf)
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	tb := array.NewTimestampBuilder(alloc, arrow.FixedWidthTypes.Timestamp_us.(*arrow.TimestampType))
	defer tb.Release()
	tb.AppendTime(time.Date(2014, 7, 15, 13, 45, 30, 0, time.UTC))
	stamps := tb.NewTimestampArray()
	defer stamps.Release()

	tf := arrow.Field{Name: "ts", Type: arrow.FixedWidthTypes.Timestamp_us}
	v, err = conv.ConvertArrowToGo(stamps, 0, &tf)
	require.NoError(t, err)
	ts, isTime := v.(time.Time)
	require.True(t, isTime)
	assert.True(t, ts.Equal(time.Date(2014, 7, 15, 13, 45, 30, 0, time.UTC)))
}
