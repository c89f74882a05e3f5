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
	"net"

	"github.com/go-sql-driver/mysql"

	"github.com/adbc-drivers/cloudsql-go/sqlpool"
)

// defaultSandboxAddr is where the development server runs its local MySQL.
const defaultSandboxAddr = "localhost:3306"

// SandboxClient talks to the local MySQL the development sandbox provides.
// It ignores the DSN placeholder, instance identifier, and converter table;
// the local server speaks the plain wire protocol with its own defaults.
type SandboxClient struct {
	// Addr overrides the development server's MySQL address.
	Addr string
}

func NewSandboxClient() *SandboxClient {
	return &SandboxClient{}
}

func (c *SandboxClient) Name() string       { return "sandbox" }
func (c *SandboxClient) ParamStyle() string { return ParamStyleFormat }

// Connect opens a direct connection to the sandbox MySQL.
func (c *SandboxClient) Connect(ctx context.Context, params Params) (*sql.DB, error) {
	cfg := baseConfig(params)
	cfg.Net = "tcp"
	cfg.Addr = c.Addr
	if cfg.Addr == "" {
		if host := params.Options[ParamHost]; host != "" {
			cfg.Addr = host
			if port := params.Options[ParamPort]; port != "" {
				cfg.Addr = net.JoinHostPort(host, port)
			}
		} else {
			cfg.Addr = defaultSandboxAddr
		}
	}
	return sqlpool.New(
		sqlpool.WithDriverName("mysql"),
		sqlpool.WithDSN(cfg.FormatDSN()),
		sqlpool.WithSettings(PoolSettings(nil)),
	)
}

// baseConfig carries the translated arguments common to all clients into
// the wire driver's configuration.
func baseConfig(params Params) *mysql.Config {
	cfg := mysql.NewConfig()
	cfg.User = params.Options[ParamUser]
	cfg.Passwd = params.Options[ParamPassword]
	cfg.DBName = params.Options[ParamDatabase]
	cfg.ParseTime = true
	return cfg
}
