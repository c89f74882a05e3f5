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

// Package cloudsql implements an ADBC driver for Google Cloud SQL reached
// through the managed runtime's database API rather than a direct network
// connection. The underlying access client is selected at runtime from the
// process environment; see the rdbms package.
package cloudsql

import (
	"context"

	"github.com/adbc-drivers/driverbase-go/driverbase"
	"github.com/apache/arrow-adbc/go/adbc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/adbc-drivers/cloudsql-go/rdbms"
)

const driverName = "cloudsql"

// Driver implements the ADBC Driver interface for Cloud SQL.
type Driver struct {
	driverbase.DriverImplBase

	env rdbms.Environment
}

var _ adbc.Driver = (*Driver)(nil)

// Option configures the Driver.
type Option func(*Driver)

// WithEnvironment injects the environment the client selector consults.
// Tests use this to exercise each deployment target deterministically.
func WithEnvironment(env rdbms.Environment) Option {
	return func(d *Driver) { d.env = env }
}

// NewDriver constructs a Cloud SQL ADBC Driver using the provided Arrow
// allocator. By default it reads the real process environment.
func NewDriver(alloc memory.Allocator, opts ...Option) *Driver {
	info := driverbase.DefaultDriverInfo(driverName)
	base := driverbase.NewDriverImplBase(info, alloc)
	base.ErrorHelper.DriverName = driverName

	d := &Driver{
		DriverImplBase: base,
		env:            rdbms.SystemEnvironment(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// NewDatabase opens a new ADBC Database with the given options.
func (d *Driver) NewDatabase(opts map[string]string) (adbc.Database, error) {
	return d.NewDatabaseWithContext(context.Background(), opts)
}

// NewDatabaseWithContext is the same, but lets you pass in a context.
func (d *Driver) NewDatabaseWithContext(ctx context.Context, opts map[string]string) (adbc.Database, error) {
	return newDatabase(ctx, d, opts)
}
