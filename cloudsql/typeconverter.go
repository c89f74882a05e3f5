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
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"golang.org/x/exp/constraints"

	"github.com/adbc-drivers/cloudsql-go/jdbctype"
)

// Metadata keys attached to Arrow fields built from result-set columns.
const (
	MetaKeyDatabaseTypeName = "sql.database_type_name"
	MetaKeyColumnName       = "sql.column_name"
	// MetaKeyJDBCType carries the remote engine's JDBC type code for the
	// column, when the column's SQL type maps to one.
	MetaKeyJDBCType = "cloudsql.jdbc_type_code"
)

// TypeConverter converts between the transport's wire values, Go values,
// and Arrow.
type TypeConverter interface {
	// ConvertColumnType converts a SQL column type to an Arrow type,
	// nullable flag, and field metadata.
	ConvertColumnType(colType *sql.ColumnType) (arrow.DataType, bool, arrow.Metadata, error)

	// ConvertSQLToArrow converts a scanned SQL value to the Go value the
	// Arrow builder for field expects.
	ConvertSQLToArrow(sqlValue any, field *arrow.Field) (any, error)

	// ConvertArrowToGo extracts a Go value from an Arrow array at index.
	ConvertArrowToGo(arrowArray arrow.Array, index int, field *arrow.Field) (any, error)

	// ConvertGoToWire encodes a Go parameter value into the form the
	// transport expects.
	ConvertGoToWire(value any) (any, error)
}

// wireTypeConverter is the Cloud SQL TypeConverter. When a converter table
// is installed (every environment except the sandbox), wire values tagged
// with a JDBC type code are decoded through it before Arrow conversion, and
// outgoing parameters are stringified through the encoder half.
type wireTypeConverter struct {
	decoders map[jdbctype.TypeCode]jdbctype.DecodeFunc
}

func newTypeConverter(decoders map[jdbctype.TypeCode]jdbctype.DecodeFunc) TypeConverter {
	return &wireTypeConverter{decoders: decoders}
}

// columnTypeCodes maps the engine's column type names onto JDBC type codes.
var columnTypeCodes = map[string]jdbctype.TypeCode{
	"BIT":       jdbctype.DataTypeBit,
	"TINYINT":   jdbctype.DataTypeTinyInt,
	"SMALLINT":  jdbctype.DataTypeSmallInt,
	"MEDIUMINT": jdbctype.DataTypeInteger,
	"INT":       jdbctype.DataTypeInteger,
	"INTEGER":   jdbctype.DataTypeInteger,
	"BIGINT":    jdbctype.DataTypeBigInt,
	"REAL":      jdbctype.DataTypeReal,
	"FLOAT":     jdbctype.DataTypeFloat,
	"DOUBLE":    jdbctype.DataTypeDouble,
	"NUMERIC":   jdbctype.DataTypeNumeric,
	"DECIMAL":   jdbctype.DataTypeDecimal,

	"CHAR":       jdbctype.DataTypeChar,
	"VARCHAR":    jdbctype.DataTypeVarChar,
	"TINYTEXT":   jdbctype.DataTypeVarChar,
	"TEXT":       jdbctype.DataTypeLongVarChar,
	"MEDIUMTEXT": jdbctype.DataTypeLongVarChar,
	"LONGTEXT":   jdbctype.DataTypeLongVarChar,
	"ENUM":       jdbctype.DataTypeVarChar,
	"SET":        jdbctype.DataTypeVarChar,
	"JSON":       jdbctype.DataTypeOther,

	"DATE":      jdbctype.DataTypeDate,
	"TIME":      jdbctype.DataTypeTime,
	"DATETIME":  jdbctype.DataTypeTimestamp,
	"TIMESTAMP": jdbctype.DataTypeTimestamp,

	"BINARY":     jdbctype.DataTypeBinary,
	"VARBINARY":  jdbctype.DataTypeVarBinary,
	"TINYBLOB":   jdbctype.DataTypeBlob,
	"BLOB":       jdbctype.DataTypeBlob,
	"MEDIUMBLOB": jdbctype.DataTypeBlob,
	"LONGBLOB":   jdbctype.DataTypeLongVarBinary,
}

// arrowTypeForCode picks the Arrow type a decoded value of the given code
// lands in. Numeric widths follow the engine's column widths; DECIMAL and
// NUMERIC decode to float64, matching the converter table.
func arrowTypeForCode(code jdbctype.TypeCode) arrow.DataType {
	switch code {
	case jdbctype.DataTypeBit, jdbctype.DataTypeTinyInt:
		return arrow.PrimitiveTypes.Int8
	case jdbctype.DataTypeSmallInt:
		return arrow.PrimitiveTypes.Int16
	case jdbctype.DataTypeInteger:
		return arrow.PrimitiveTypes.Int32
	case jdbctype.DataTypeBigInt:
		return arrow.PrimitiveTypes.Int64
	case jdbctype.DataTypeReal:
		return arrow.PrimitiveTypes.Float32
	case jdbctype.DataTypeDouble, jdbctype.DataTypeFloat,
		jdbctype.DataTypeNumeric, jdbctype.DataTypeDecimal:
		return arrow.PrimitiveTypes.Float64
	case jdbctype.DataTypeDate:
		return arrow.FixedWidthTypes.Date32
	case jdbctype.DataTypeTime:
		return arrow.FixedWidthTypes.Time64us
	case jdbctype.DataTypeTimestamp:
		return arrow.FixedWidthTypes.Timestamp_us
	case jdbctype.DataTypeBinary, jdbctype.DataTypeVarBinary,
		jdbctype.DataTypeLongVarBinary, jdbctype.DataTypeBlob:
		return arrow.BinaryTypes.Binary
	default:
		// Character and exotic codes all decode to text.
		return arrow.BinaryTypes.String
	}
}

// ConvertColumnType implements TypeConverter.
func (c *wireTypeConverter) ConvertColumnType(colType *sql.ColumnType) (arrow.DataType, bool, arrow.Metadata, error) {
	typeName := strings.ToUpper(colType.DatabaseTypeName())
	nullable, _ := colType.Nullable()

	metadataMap := map[string]string{
		MetaKeyDatabaseTypeName: colType.DatabaseTypeName(),
		MetaKeyColumnName:       colType.Name(),
	}

	code, ok := columnTypeCodes[typeName]
	if !ok {
		// A column type outside the enumerated set has no table entry;
		// leave it as text with no code tag.
		return arrow.BinaryTypes.String, nullable, arrow.MetadataFrom(metadataMap), nil
	}

	metadataMap[MetaKeyJDBCType] = strconv.Itoa(int(code))
	return arrowTypeForCode(code), nullable, arrow.MetadataFrom(metadataMap), nil
}

// fieldTypeCode recovers the JDBC type code tagged on a field.
func fieldTypeCode(field *arrow.Field) (jdbctype.TypeCode, bool) {
	if field == nil {
		return 0, false
	}
	s, ok := field.Metadata.GetValue(MetaKeyJDBCType)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return jdbctype.TypeCode(n), true
}

// unwrap unwraps SQL nullable types via the driver.Valuer interface.
func unwrap(val any) (any, error) {
	if v, ok := val.(driver.Valuer); ok {
		return v.Value()
	}
	return val, nil
}

// ConvertSQLToArrow implements TypeConverter. Byte-typed wire values whose
// column carries a JDBC code are run through the installed decoder table
// first; everything then coerces to the field's Arrow type.
func (c *wireTypeConverter) ConvertSQLToArrow(sqlValue any, field *arrow.Field) (any, error) {
	unwrapped, err := unwrap(sqlValue)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap value: %w", err)
	}
	if unwrapped == nil {
		return nil, nil
	}

	if c.decoders != nil {
		if b, isBytes := unwrapped.([]byte); isBytes {
			if code, ok := fieldTypeCode(field); ok {
				if fn, ok := c.decoders[code]; ok {
					decoded, err := fn(b)
					if err != nil {
						return nil, fmt.Errorf("failed to decode %s value: %w", field.Name, err)
					}
					unwrapped = decoded
				}
			}
		}
	}

	switch field.Type.(type) {
	case *arrow.Int8Type:
		return convertToNumericType[int8](unwrapped)
	case *arrow.Int16Type:
		return convertToNumericType[int16](unwrapped)
	case *arrow.Int32Type:
		return convertToNumericType[int32](unwrapped)
	case *arrow.Int64Type:
		return convertToNumericType[int64](unwrapped)
	case *arrow.Uint8Type:
		return convertToNumericType[uint8](unwrapped)
	case *arrow.Uint16Type:
		return convertToNumericType[uint16](unwrapped)
	case *arrow.Uint32Type:
		return convertToNumericType[uint32](unwrapped)
	case *arrow.Uint64Type:
		return convertToNumericType[uint64](unwrapped)
	case *arrow.Float32Type:
		return convertToNumericType[float32](unwrapped)
	case *arrow.Float64Type:
		return convertToNumericType[float64](unwrapped)
	case *arrow.BooleanType:
		return convertToBool(unwrapped)
	case *arrow.StringType, *arrow.LargeStringType, *arrow.StringViewType:
		return convertToString(unwrapped)
	case *arrow.BinaryType, *arrow.LargeBinaryType, *arrow.BinaryViewType, *arrow.FixedSizeBinaryType:
		return convertToBinary(unwrapped)
	case *arrow.Date32Type:
		return convertToDate32(unwrapped)
	case *arrow.Time64Type:
		return convertToTime64(unwrapped)
	case *arrow.TimestampType:
		return convertToTimestamp(unwrapped)
	default:
		return unwrapped, nil
	}
}

// ConvertArrowToGo implements TypeConverter.
func (c *wireTypeConverter) ConvertArrowToGo(arrowArray arrow.Array, index int, field *arrow.Field) (any, error) {
	if arrowArray.IsNull(index) {
		return nil, nil
	}

	switch a := arrowArray.(type) {
	case *array.Int8:
		return a.Value(index), nil
	case *array.Int16:
		return a.Value(index), nil
	case *array.Int32:
		return a.Value(index), nil
	case *array.Int64:
		return a.Value(index), nil
	case *array.Uint8:
		return a.Value(index), nil
	case *array.Uint16:
		return a.Value(index), nil
	case *array.Uint32:
		return a.Value(index), nil
	case *array.Uint64:
		return a.Value(index), nil
	case *array.Float32:
		return a.Value(index), nil
	case *array.Float64:
		return a.Value(index), nil
	case *array.Boolean:
		return a.Value(index), nil
	case *array.String:
		return a.Value(index), nil
	case *array.LargeString:
		return a.Value(index), nil
	case *array.StringView:
		return a.Value(index), nil
	case *array.Binary:
		return a.Value(index), nil
	case *array.LargeBinary:
		return a.Value(index), nil
	case *array.BinaryView:
		return a.Value(index), nil
	case *array.FixedSizeBinary:
		return a.Value(index), nil
	case *array.Date32:
		return a.Value(index).ToTime(), nil
	case *array.Date64:
		return a.Value(index).ToTime(), nil
	case *array.Time32:
		return a.Value(index).ToTime(a.DataType().(*arrow.Time32Type).Unit), nil
	case *array.Time64:
		return a.Value(index).ToTime(a.DataType().(*arrow.Time64Type).Unit), nil
	case *array.Timestamp:
		timestampType := a.DataType().(*arrow.TimestampType)
		tz, err := timestampType.GetZone()
		if err != nil {
			return nil, err
		}
		return a.Value(index).ToTime(timestampType.Unit).In(tz), nil
	default:
		return a.ValueStr(index), nil
	}
}

// ConvertGoToWire implements TypeConverter. With a converter table
// installed, parameters are stringified through the encoder half of the
// table; the sandbox client binds Go values directly.
func (c *wireTypeConverter) ConvertGoToWire(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	if c.decoders == nil {
		return value, nil
	}
	return jdbctype.Encode(value)
}

// convertToNumericType converts a value to the target numeric type T,
// falling back to string parsing for wire forms.
func convertToNumericType[T constraints.Integer | constraints.Float](val any) (T, error) {
	switch v := val.(type) {
	case int:
		return T(v), nil
	case int8:
		return T(v), nil
	case int16:
		return T(v), nil
	case int32:
		return T(v), nil
	case int64:
		return T(v), nil
	case uint:
		return T(v), nil
	case uint8:
		return T(v), nil
	case uint16:
		return T(v), nil
	case uint32:
		return T(v), nil
	case uint64:
		return T(v), nil
	case float32:
		return T(v), nil
	case float64:
		return T(v), nil
	default:
		strVal := fmt.Sprintf("%v", val)
		if b, ok := val.([]byte); ok {
			strVal = string(b)
		}
		var zero T
		switch any(zero).(type) {
		case int8, int16, int32, int64:
			parsed, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return zero, fmt.Errorf("cannot convert %q to %T: %w", strVal, zero, err)
			}
			return T(parsed), nil
		case uint8, uint16, uint32, uint64:
			parsed, err := strconv.ParseUint(strVal, 10, 64)
			if err != nil {
				return zero, fmt.Errorf("cannot convert %q to %T: %w", strVal, zero, err)
			}
			return T(parsed), nil
		default:
			parsed, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return zero, fmt.Errorf("cannot convert %q to %T: %w", strVal, zero, err)
			}
			return T(parsed), nil
		}
	}
}

func convertToBool(val any) (bool, error) {
	switch v := val.(type) {
	case bool:
		return v, nil
	case int64:
		return v != 0, nil
	case []byte:
		return strconv.ParseBool(string(v))
	case string:
		return strconv.ParseBool(v)
	default:
		return false, fmt.Errorf("cannot convert %T to bool", val)
	}
}

func convertToString(val any) (string, error) {
	switch v := val.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case jdbctype.Blob:
		return string(v), nil
	default:
		return fmt.Sprintf("%v", val), nil
	}
}

func convertToBinary(val any) ([]byte, error) {
	switch v := val.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case jdbctype.Blob:
		return []byte(v), nil
	default:
		return fmt.Appendf(nil, "%v", val), nil
	}
}

func convertToDate32(val any) (arrow.Date32, error) {
	switch v := val.(type) {
	case civil.Date:
		return arrow.Date32FromTime(v.In(time.UTC)), nil
	case time.Time:
		return arrow.Date32FromTime(v), nil
	case []byte:
		d, err := civil.ParseDate(string(v))
		if err != nil {
			return 0, fmt.Errorf("cannot parse date from %q: %w", v, err)
		}
		return arrow.Date32FromTime(d.In(time.UTC)), nil
	default:
		return 0, fmt.Errorf("cannot convert %T to Date32", val)
	}
}

func convertToTime64(val any) (arrow.Time64, error) {
	micros := func(hour, minute, sec, nanos int) arrow.Time64 {
		return arrow.Time64(hour)*3_600_000_000 +
			arrow.Time64(minute)*60_000_000 +
			arrow.Time64(sec)*1_000_000 +
			arrow.Time64(nanos)/1_000
	}
	switch v := val.(type) {
	case civil.Time:
		return micros(v.Hour, v.Minute, v.Second, v.Nanosecond), nil
	case time.Time:
		return micros(v.Hour(), v.Minute(), v.Second(), v.Nanosecond()), nil
	case []byte:
		t, err := civil.ParseTime(string(v))
		if err != nil {
			return 0, fmt.Errorf("cannot parse time from %q: %w", v, err)
		}
		return micros(t.Hour, t.Minute, t.Second, t.Nanosecond), nil
	default:
		return 0, fmt.Errorf("cannot convert %T to Time64", val)
	}
}

func convertToTimestamp(val any) (time.Time, error) {
	switch v := val.(type) {
	case time.Time:
		return v, nil
	case []byte:
		return parseTimestampString(string(v))
	case string:
		return parseTimestampString(v)
	default:
		return time.Time{}, fmt.Errorf("cannot convert %T to timestamp", val)
	}
}

func parseTimestampString(s string) (time.Time, error) {
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
	return time.Time{}, fmt.Errorf("could not parse timestamp string %q", s)
}

// buildArrowSchemaFromColumnTypes creates an Arrow schema from SQL column
// types using the type converter.
func buildArrowSchemaFromColumnTypes(columnTypes []*sql.ColumnType, typeConverter TypeConverter) (*arrow.Schema, error) {
	fields := make([]arrow.Field, len(columnTypes))
	for i, colType := range columnTypes {
		arrowType, nullable, metadata, err := typeConverter.ConvertColumnType(colType)
		if err != nil {
			return nil, err
		}
		fields[i] = arrow.Field{
			Name:     colType.Name(),
			Type:     arrowType,
			Nullable: nullable,
			Metadata: metadata,
		}
	}
	return arrow.NewSchema(fields, nil), nil
}
