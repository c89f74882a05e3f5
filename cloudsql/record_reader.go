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
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// queryRecordReader is an array.RecordReader over a SQL query. It re-issues
// the query once per row of the bound parameter stream (if any) and batches
// scanned rows into Arrow records.
type queryRecordReader struct {
	refCount int64
	ctx      context.Context
	alloc    memory.Allocator

	conn          *sql.Conn
	query         string
	stmt          *sql.Stmt
	typeConverter TypeConverter
	batchSize     int64

	// bind parameters or nil
	params      array.RecordReader
	paramRecord arrow.Record
	paramIndex  int

	rows      *sql.Rows
	values    []any
	valuePtrs []any

	schema  *arrow.Schema
	builder *array.RecordBuilder
	record  arrow.Record
	err     error
	done    bool
}

// newQueryRecordReader runs the query (for the first parameter row, if
// parameters are bound) and returns a reader positioned before the first
// record. The reader takes its own reference to params.
func newQueryRecordReader(ctx context.Context, alloc memory.Allocator, conn *sql.Conn, query string, stmt *sql.Stmt, params array.RecordReader, batchSize int64, typeConverter TypeConverter) (*queryRecordReader, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}
	rr := &queryRecordReader{
		refCount:      1,
		ctx:           ctx,
		alloc:         alloc,
		conn:          conn,
		query:         query,
		stmt:          stmt,
		typeConverter: typeConverter,
		batchSize:     batchSize,
		params:        params,
	}
	if params != nil {
		params.Retain()
		if !rr.advanceParams() {
			// Parameters given but the stream is empty: an empty result
			// with an empty schema.
			if err := rr.params.Err(); err != nil {
				rr.close()
				return nil, err
			}
			rr.schema = arrow.NewSchema([]arrow.Field{}, nil)
			rr.builder = array.NewRecordBuilder(alloc, rr.schema)
			rr.done = true
			return rr, nil
		}
	}
	if err := rr.nextResultSet(); err != nil {
		rr.close()
		return nil, err
	}
	rr.builder = array.NewRecordBuilder(alloc, rr.schema)
	return rr, nil
}

// nextResultSet executes the query for the current parameter row and
// prepares scan buffers from the result's column types.
func (rr *queryRecordReader) nextResultSet() (err error) {
	if rr.rows != nil {
		if err := rr.rows.Close(); err != nil {
			return fmt.Errorf("failed to close previous result set: %w", err)
		}
		rr.rows = nil
	}

	var args []any
	if rr.paramRecord != nil {
		args = make([]any, int(rr.paramRecord.NumCols()))
		for i := range args {
			field := rr.paramRecord.Schema().Field(i)
			goVal, err := rr.typeConverter.ConvertArrowToGo(rr.paramRecord.Column(i), rr.paramIndex, &field)
			if err != nil {
				return fmt.Errorf("failed to extract parameter %d: %w", i, err)
			}
			args[i], err = rr.typeConverter.ConvertGoToWire(goVal)
			if err != nil {
				return fmt.Errorf("failed to encode parameter %d: %w", i, err)
			}
		}
	}

	if rr.stmt != nil {
		rr.rows, err = rr.stmt.QueryContext(rr.ctx, args...)
	} else {
		rr.rows, err = rr.conn.QueryContext(rr.ctx, rr.query, args...)
	}
	if err != nil {
		return err
	}

	columnTypes, err := rr.rows.ColumnTypes()
	if err != nil {
		return fmt.Errorf("failed to get column types: %w", err)
	}
	schema, err := buildArrowSchemaFromColumnTypes(columnTypes, rr.typeConverter)
	if err != nil {
		return fmt.Errorf("failed to build Arrow schema: %w", err)
	}
	// The schema is fixed by the first result set; subsequent parameter
	// rows re-run the same statement and produce the same columns.
	if rr.schema == nil {
		rr.schema = schema
	}

	if len(rr.values) != len(columnTypes) {
		rr.values = make([]any, len(columnTypes))
		rr.valuePtrs = make([]any, len(columnTypes))
	}
	for i := range rr.values {
		rr.valuePtrs[i] = &rr.values[i]
	}
	return nil
}

// appendRow scans one row into the builder. Returns io.EOF at the end of
// the current result set.
func (rr *queryRecordReader) appendRow() error {
	if !rr.rows.Next() {
		if err := rr.rows.Err(); err != nil {
			return err
		}
		return io.EOF
	}
	if err := rr.rows.Scan(rr.valuePtrs...); err != nil {
		return err
	}
	for i := range rr.values {
		field := rr.schema.Field(i)
		if err := appendValue(rr.builder.Field(i), rr.values[i], &field, rr.typeConverter); err != nil {
			return fmt.Errorf("failed to append value to column %d: %w", i, err)
		}
	}
	return nil
}

// advanceParams moves to the next row of bind parameters; false when no
// more are available (or none were bound).
func (rr *queryRecordReader) advanceParams() bool {
	if rr.params == nil {
		return false
	}
	rr.paramIndex++
	for rr.paramRecord == nil || rr.paramIndex >= int(rr.paramRecord.NumRows()) {
		if !rr.params.Next() {
			return false
		}
		rr.paramRecord = rr.params.Record()
		rr.paramIndex = 0
	}
	return true
}

func (rr *queryRecordReader) Next() bool {
	if rr.err != nil {
		return false
	}
	if rr.record != nil {
		rr.record.Release()
		rr.record = nil
	}
	if rr.builder == nil {
		return false
	}

	rows := int64(0)
	for !rr.done && rows < rr.batchSize {
		err := rr.appendRow()
		if err == io.EOF {
			if !rr.advanceParams() {
				rr.done = true
				break
			}
			if err := rr.nextResultSet(); err != nil {
				rr.err = err
				return false
			}
			continue
		} else if err != nil {
			rr.err = err
			return false
		}
		rows++
	}
	rr.record = rr.builder.NewRecord()
	if rows == 0 && rr.done {
		// Clean up eagerly; the final Release may come much later.
		rr.close()
	}
	return rows > 0
}

func (rr *queryRecordReader) Schema() *arrow.Schema          { return rr.schema }
func (rr *queryRecordReader) Record() arrow.Record           { return rr.record }
func (rr *queryRecordReader) RecordBatch() arrow.RecordBatch { return rr.record }
func (rr *queryRecordReader) Err() error                     { return rr.err }

func (rr *queryRecordReader) Retain() {
	atomic.AddInt64(&rr.refCount, 1)
}

func (rr *queryRecordReader) Release() {
	if atomic.AddInt64(&rr.refCount, -1) == 0 {
		rr.close()
	}
}

// close releases everything except the prepared statement, which is owned
// by the statement that created this reader. Idempotent.
func (rr *queryRecordReader) close() {
	if rr.record != nil {
		rr.record.Release()
		rr.record = nil
	}
	if rr.builder != nil {
		rr.builder.Release()
		rr.builder = nil
	}
	if rr.rows != nil {
		if err := rr.rows.Close(); err != nil {
			rr.err = errors.Join(rr.err, err)
		}
		rr.rows = nil
	}
	rr.paramRecord = nil
	if rr.params != nil {
		if err := rr.params.Err(); err != nil {
			rr.err = errors.Join(rr.err, err)
		}
		rr.params.Release()
		rr.params = nil
	}
}

// appendValue converts a scanned SQL value for field and appends it to the
// builder.
func appendValue(builder array.Builder, val any, field *arrow.Field, typeConverter TypeConverter) error {
	converted, err := typeConverter.ConvertSQLToArrow(val, field)
	if err != nil {
		return err
	}
	if converted == nil {
		builder.AppendNull()
		return nil
	}

	switch b := builder.(type) {
	case *array.Int8Builder:
		b.Append(converted.(int8))
	case *array.Int16Builder:
		b.Append(converted.(int16))
	case *array.Int32Builder:
		b.Append(converted.(int32))
	case *array.Int64Builder:
		b.Append(converted.(int64))
	case *array.Uint8Builder:
		b.Append(converted.(uint8))
	case *array.Uint16Builder:
		b.Append(converted.(uint16))
	case *array.Uint32Builder:
		b.Append(converted.(uint32))
	case *array.Uint64Builder:
		b.Append(converted.(uint64))
	case *array.Float32Builder:
		b.Append(converted.(float32))
	case *array.Float64Builder:
		b.Append(converted.(float64))
	case *array.BooleanBuilder:
		b.Append(converted.(bool))
	case *array.StringBuilder:
		b.Append(converted.(string))
	case *array.BinaryBuilder:
		b.Append(converted.([]byte))
	case *array.Date32Builder:
		b.Append(converted.(arrow.Date32))
	case *array.Time64Builder:
		b.Append(converted.(arrow.Time64))
	case *array.TimestampBuilder:
		b.AppendTime(converted.(time.Time))
	default:
		return builder.AppendValueFromString(fmt.Sprintf("%v", converted))
	}
	return nil
}
