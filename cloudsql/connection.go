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

	"github.com/adbc-drivers/driverbase-go/driverbase"
	"github.com/apache/arrow-adbc/go/adbc"
)

// connectionImpl implements the ADBC Connection interface on top of a
// dedicated *sql.Conn.
type connectionImpl struct {
	driverbase.ConnectionImplBase

	conn          *sql.Conn
	typeConverter TypeConverter
}

// newConnection acquires a dedicated session. With the never-reuse pool
// policy this always dials fresh.
func newConnection(ctx context.Context, db *databaseImpl) (adbc.Connection, error) {
	sqlConn, err := db.db.Conn(ctx)
	if err != nil {
		return nil, wrapServerError(&db.ErrorHelper, err, "failed to acquire database connection")
	}

	base := driverbase.NewConnectionImplBase(&db.DatabaseImplBase)
	impl := &connectionImpl{
		ConnectionImplBase: base,
		conn:               sqlConn,
		typeConverter:      db.typeConverter,
	}

	builder := driverbase.NewConnectionBuilder(impl)
	return builder.Connection(), nil
}

// NewStatement satisfies adbc.Connection.
func (c *connectionImpl) NewStatement() (adbc.Statement, error) {
	return newStatement(c), nil
}

// SetOption sets a string option on this connection.
func (c *connectionImpl) SetOption(key, value string) error {
	return c.ConnectionImplBase.SetOption(key, value)
}

// Commit is a no-op under auto-commit mode.
func (c *connectionImpl) Commit(ctx context.Context) error {
	return nil
}

// Rollback is a no-op under auto-commit mode.
func (c *connectionImpl) Rollback(ctx context.Context) error {
	return nil
}

// Close closes the underlying SQL connection.
func (c *connectionImpl) Close() error {
	return c.conn.Close()
}
