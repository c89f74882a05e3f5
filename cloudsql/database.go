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
	"log/slog"
	"net/url"

	"github.com/adbc-drivers/driverbase-go/driverbase"
	"github.com/apache/arrow-adbc/go/adbc"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/adbc-drivers/cloudsql-go/rdbms"
)

var tracer = otel.Tracer("github.com/adbc-drivers/cloudsql-go/cloudsql")

// databaseImpl implements the ADBC Database interface on top of the
// selected rdbms client.
type databaseImpl struct {
	driverbase.DatabaseImplBase

	// db is the Go SQL handle; its pool policy is never-reuse.
	db *sql.DB
	// client is the access implementation chosen for this environment.
	client rdbms.Client
	// typeConverter handles wire-to-Arrow type conversion.
	typeConverter TypeConverter
	logger        *slog.Logger
}

// newDatabase translates the connection options, selects the access client,
// and opens the underlying handle.
func newDatabase(ctx context.Context, driver *Driver, opts map[string]string) (adbc.Database, error) {
	base, err := driverbase.NewDatabaseImplBase(ctx, &driver.DriverImplBase)
	if err != nil {
		return nil, driver.ErrorHelper.IO("failed to initialize database base: %v", err)
	}

	uri := opts[adbc.OptionKeyURI]
	if uri == "" {
		return nil, base.ErrorHelper.InvalidArgument("missing required option %s", adbc.OptionKeyURI)
	}
	u, err := url.Parse(uri)
	if err != nil {
		return nil, base.ErrorHelper.InvalidArgument("invalid connection URI: %v", err)
	}
	if u.Scheme != "cloudsql" {
		return nil, base.ErrorHelper.InvalidArgument("unsupported URI scheme %q, want \"cloudsql\"", u.Scheme)
	}

	params, err := rdbms.TranslateConnectArgs(u, driver.env)
	if err != nil {
		return nil, base.ErrorHelper.InvalidArgument("failed to translate connection URI: %v", err)
	}
	// Standard ADBC credential options override URL userinfo.
	if user := opts[adbc.OptionKeyUsername]; user != "" {
		params.Options[rdbms.ParamUser] = user
	}
	if pass := opts[adbc.OptionKeyPassword]; pass != "" {
		params.Options[rdbms.ParamPassword] = pass
	}

	client := rdbms.SelectClient(driver.env)
	logger := slog.Default()
	logger.DebugContext(ctx, "selected Cloud SQL access client",
		"client", client.Name(),
		"development", driver.env.IsDevelopment(),
	)

	ctx, span := tracer.Start(ctx, "cloudsql.Connect",
		trace.WithAttributes(attribute.String("cloudsql.client", client.Name())))
	sqlDB, err := client.Connect(ctx, params)
	span.End()
	if err != nil {
		return nil, wrapServerError(&base.ErrorHelper, err, "failed to connect via %s client", client.Name())
	}

	// No ping here: the transport recycles connections at any moment, so a
	// successful ping proves nothing about the next request.
	db := &databaseImpl{
		DatabaseImplBase: base,
		db:               sqlDB,
		client:           client,
		typeConverter:    newTypeConverter(params.Converters),
		logger:           logger,
	}
	return driverbase.NewDatabase(db), nil
}

// Open creates a new ADBC Connection. Given the pool policy, each session
// performs a full fresh connect.
func (d *databaseImpl) Open(ctx context.Context) (adbc.Connection, error) {
	return newConnection(ctx, d)
}

// Close closes the database handle.
func (d *databaseImpl) Close() error {
	return d.db.Close()
}
