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

package rdbms

import (
	"context"
	"database/sql"
	"net/url"

	"github.com/adbc-drivers/cloudsql-go/jdbctype"
	"github.com/adbc-drivers/cloudsql-go/sqlpool"
)

// Keys for the keyword arguments in Params.Options.
const (
	// ParamDSN is set (to the empty string) when the default vendor
	// wrapper layer is bypassed and the client dials the transport itself.
	ParamDSN = "dsn"
	// ParamInstance names the managed instance to reach.
	ParamInstance = "instance"
	ParamDatabase = "db"
	ParamUser     = "user"
	ParamPassword = "password"
	ParamHost     = "host"
	ParamPort     = "port"
)

// ParamStyleFormat is the placeholder convention all three clients share.
const ParamStyleFormat = "format"

// Params are the keyword arguments handed to a client's Connect.
type Params struct {
	// Options carries the string keyword arguments.
	Options map[string]string
	// Converters is the decode table to install on the outgoing
	// connection. Nil in the development sandbox, where the client's own
	// defaults apply.
	Converters map[jdbctype.TypeCode]jdbctype.DecodeFunc
}

// Client is the capability surface shared by the three underlying
// Cloud SQL access implementations.
type Client interface {
	// Name identifies the client in logs.
	Name() string
	// ParamStyle reports the statement placeholder convention.
	ParamStyle() string
	// Connect opens a database handle using the translated arguments.
	// The pool policy for this connection family is always applied.
	Connect(ctx context.Context, params Params) (*sql.DB, error)
}

// PoolSettings returns the pool policy for this connection family.
// The managed transport recycles sockets at any moment, so connections are
// never reused regardless of the URL or any pooling configuration requested
// elsewhere.
func PoolSettings(*url.URL) sqlpool.Settings {
	return sqlpool.NoPooling()
}
