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
	"strconv"

	"github.com/adbc-drivers/driverbase-go/driverbase"
	"github.com/apache/arrow-adbc/go/adbc"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// OptionKeyBatchSize controls how many rows to accumulate per Arrow record
// batch.
const OptionKeyBatchSize = "adbc.statement.batch_size"

// statementImpl implements the ADBC Statement interface.
type statementImpl struct {
	driverbase.StatementImplBase

	conn          *sql.Conn
	query         string
	stmt          *sql.Stmt
	boundStream   array.RecordReader
	batchSize     int
	typeConverter TypeConverter
}

func (s *statementImpl) Base() *driverbase.StatementImplBase {
	return &s.StatementImplBase
}

func newStatement(c *connectionImpl) adbc.Statement {
	base := driverbase.NewStatementImplBase(&c.ConnectionImplBase, c.ErrorHelper)
	return driverbase.NewStatement(&statementImpl{
		StatementImplBase: base,
		conn:              c.conn,
		batchSize:         1000,
		typeConverter:     c.typeConverter,
	})
}

// SetSqlQuery stores the SQL text on the statement.
func (s *statementImpl) SetSqlQuery(query string) error {
	if s.stmt != nil {
		if err := s.stmt.Close(); err != nil {
			return s.Base().ErrorHelper.IO("failed to close prepared statement: %v", err)
		}
		s.stmt = nil
	}
	if s.boundStream != nil {
		s.boundStream.Release()
		s.boundStream = nil
	}
	s.query = query
	return nil
}

// SetOption sets a string option on this statement.
func (s *statementImpl) SetOption(key, val string) error {
	switch key {
	case OptionKeyBatchSize:
		size, err := strconv.Atoi(val)
		if err != nil {
			return s.Base().ErrorHelper.InvalidArgument("invalid batch size: %v", err)
		}
		return s.setBatchSize(size)
	default:
		return s.Base().ErrorHelper.NotImplemented("unsupported option: %s", key)
	}
}

func (s *statementImpl) setBatchSize(size int) error {
	if size <= 0 {
		return s.Base().ErrorHelper.InvalidArgument("batch size must be positive")
	}
	s.batchSize = size
	return nil
}

// Bind uses an Arrow record to bind parameters to the query.
func (s *statementImpl) Bind(ctx context.Context, record arrow.Record) error {
	if record == nil {
		return s.Base().ErrorHelper.InvalidArgument("record cannot be nil")
	}
	if s.boundStream != nil {
		s.boundStream.Release()
		s.boundStream = nil
	}
	s.boundStream, _ = array.NewRecordReader(record.Schema(), []arrow.Record{record})
	return nil
}

// BindStream uses a record stream to bind parameters for bulk operations.
func (s *statementImpl) BindStream(ctx context.Context, stream array.RecordReader) error {
	if stream == nil {
		return s.Base().ErrorHelper.InvalidArgument("stream cannot be nil")
	}
	if s.boundStream != nil {
		s.boundStream.Release()
		s.boundStream = nil
	}
	stream.Retain()
	s.boundStream = stream
	return nil
}

// Prepare creates a server-side prepared statement.
func (s *statementImpl) Prepare(ctx context.Context) (err error) {
	if s.query == "" {
		return s.Base().ErrorHelper.InvalidArgument("no query to prepare")
	}
	if s.stmt != nil {
		if err = s.stmt.Close(); err != nil {
			return s.Base().ErrorHelper.IO("failed to close statement: %v", err)
		}
		s.stmt = nil
	}
	s.stmt, err = s.conn.PrepareContext(ctx, s.query)
	if err != nil {
		return wrapServerError(&s.Base().ErrorHelper, err, "failed to prepare statement")
	}
	return nil
}

// ExecuteUpdate runs DML/DDL. The transport does not report reliable
// affected-row counts, so the result is always -1 (unknown); callers must
// not depend on row-count feedback from this backend.
func (s *statementImpl) ExecuteUpdate(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "cloudsql.ExecuteUpdate")
	defer span.End()

	if s.boundStream != nil {
		return s.executeBoundUpdate(ctx)
	}

	if s.stmt == nil && s.query == "" {
		return -1, s.Base().ErrorHelper.InvalidArgument("no SQL statement provided")
	}

	var err error
	if s.stmt != nil {
		_, err = s.stmt.ExecContext(ctx)
	} else {
		_, err = s.conn.ExecContext(ctx, s.query)
	}
	if err != nil {
		return -1, wrapServerError(&s.Base().ErrorHelper, err, "failed to execute statement")
	}
	return -1, nil
}

// executeBoundUpdate executes the statement once per bound parameter row.
func (s *statementImpl) executeBoundUpdate(ctx context.Context) (int64, error) {
	if s.query == "" {
		return -1, s.Base().ErrorHelper.InvalidArgument("no query set")
	}

	var err error
	stmt := s.stmt
	if stmt == nil {
		stmt, err = s.conn.PrepareContext(ctx, s.query)
		if err != nil {
			return -1, wrapServerError(&s.Base().ErrorHelper, err, "failed to prepare statement for batch execution")
		}
		defer stmt.Close()
	}

	params := make([]any, s.boundStream.Schema().NumFields())
	for s.boundStream.Next() {
		record := s.boundStream.Record()
		for rowIdx := 0; rowIdx < int(record.NumRows()); rowIdx++ {
			for colIdx := 0; colIdx < int(record.NumCols()); colIdx++ {
				field := record.Schema().Field(colIdx)
				goVal, err := s.typeConverter.ConvertArrowToGo(record.Column(colIdx), rowIdx, &field)
				if err != nil {
					return -1, s.Base().ErrorHelper.IO("failed to extract parameter value: %v", err)
				}
				params[colIdx], err = s.typeConverter.ConvertGoToWire(goVal)
				if err != nil {
					return -1, s.Base().ErrorHelper.InvalidData("failed to encode parameter value: %v", err)
				}
			}
			if _, err := stmt.ExecContext(ctx, params...); err != nil {
				return -1, wrapServerError(&s.Base().ErrorHelper, err, "failed to execute statement")
			}
		}
	}
	if err := s.boundStream.Err(); err != nil {
		return -1, s.Base().ErrorHelper.IO("stream error during execution: %v", err)
	}
	// Affected counts are unreliable on this transport.
	return -1, nil
}

// ExecuteSchema returns the Arrow schema by querying zero rows.
func (s *statementImpl) ExecuteSchema(ctx context.Context) (schema *arrow.Schema, err error) {
	if s.query == "" {
		return nil, s.Base().ErrorHelper.InvalidArgument("no query set")
	}

	limitQuery := fmt.Sprintf("SELECT * FROM (%s) AS subquery LIMIT 0", s.query)
	rows, err := s.conn.QueryContext(ctx, limitQuery)
	if err != nil {
		return nil, wrapServerError(&s.Base().ErrorHelper, err, "failed to execute schema query")
	}
	defer func() {
		err = errors.Join(err, rows.Close())
	}()

	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	return buildArrowSchemaFromColumnTypes(columnTypes, s.typeConverter)
}

// ExecuteQuery runs a SELECT and returns a RecordReader streaming Arrow
// records. The row count is always -1; it is unknown without draining the
// result.
func (s *statementImpl) ExecuteQuery(ctx context.Context) (array.RecordReader, int64, error) {
	ctx, span := tracer.Start(ctx, "cloudsql.ExecuteQuery")
	defer span.End()

	if s.query == "" {
		return nil, -1, s.Base().ErrorHelper.InvalidArgument("no query set")
	}

	reader, err := newQueryRecordReader(ctx, memory.DefaultAllocator, s.conn, s.query, s.stmt, s.boundStream, int64(s.batchSize), s.typeConverter)
	if err != nil {
		return nil, -1, wrapServerError(&s.Base().ErrorHelper, err, "failed to execute query")
	}
	return reader, -1, nil
}

// ExecutePartitions handles partitioned execution; not supported here.
func (s *statementImpl) ExecutePartitions(context.Context) (*arrow.Schema, adbc.Partitions, int64, error) {
	return nil, adbc.Partitions{}, 0, s.Base().ErrorHelper.NotImplemented("ExecutePartitions not supported")
}

// GetParameterSchema returns the schema for query parameters. The transport
// offers no parameter introspection.
func (s *statementImpl) GetParameterSchema() (*arrow.Schema, error) {
	return nil, s.Base().ErrorHelper.NotImplemented("GetParameterSchema not supported")
}

// SetSubstraitPlan sets the Substrait plan; not supported here.
func (s *statementImpl) SetSubstraitPlan([]byte) error {
	return s.Base().ErrorHelper.NotImplemented("SetSubstraitPlan not supported")
}

// Close shuts down the prepared statement (if any) and bound resources.
func (s *statementImpl) Close() error {
	if s.boundStream != nil {
		s.boundStream.Release()
		s.boundStream = nil
	}
	if s.stmt != nil {
		if err := s.stmt.Close(); err != nil {
			return s.Base().ErrorHelper.IO("failed to close prepared statement: %v", err)
		}
		s.stmt = nil
	}
	return nil
}
