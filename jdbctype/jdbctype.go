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

// Package jdbctype defines the JDBC type codes used by the Cloud SQL wire
// protocol to tag result-set columns, along with the converter tables that
// translate values between Go and the wire representation.
package jdbctype

// TypeCode is a JDBC type tag as reported by the remote engine for a column.
type TypeCode int16

const (
	DataTypeArray         TypeCode = 2003
	DataTypeBigInt        TypeCode = -5
	DataTypeBinary        TypeCode = -2
	DataTypeBit           TypeCode = -7
	DataTypeBlob          TypeCode = 2004
	DataTypeBoolean       TypeCode = 16
	DataTypeChar          TypeCode = 1
	DataTypeClob          TypeCode = 2005
	DataTypeDatalink      TypeCode = 70
	DataTypeDate          TypeCode = 91
	DataTypeDecimal       TypeCode = 3
	DataTypeDistinct      TypeCode = 2001
	DataTypeDouble        TypeCode = 8
	DataTypeFloat         TypeCode = 6
	DataTypeInteger       TypeCode = 4
	DataTypeJavaObject    TypeCode = 2000
	DataTypeLongNVarChar  TypeCode = -16
	DataTypeLongVarBinary TypeCode = -4
	DataTypeLongVarChar   TypeCode = -1
	DataTypeNChar         TypeCode = -15
	DataTypeNClob         TypeCode = 2011
	DataTypeNull          TypeCode = 0
	DataTypeNumeric       TypeCode = 2
	DataTypeNVarChar      TypeCode = -9
	DataTypeOther         TypeCode = 1111
	DataTypeReal          TypeCode = 7
	DataTypeRef           TypeCode = 2006
	DataTypeRowID         TypeCode = -8
	DataTypeSmallInt      TypeCode = 5
	DataTypeSqlXml        TypeCode = 2009
	DataTypeStruct        TypeCode = 2002
	DataTypeTime          TypeCode = 92
	DataTypeTimestamp     TypeCode = 93
	DataTypeTinyInt       TypeCode = -6
	DataTypeVarBinary     TypeCode = -3
	DataTypeVarChar       TypeCode = 12
)
