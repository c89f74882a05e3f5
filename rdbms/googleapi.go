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
	"fmt"
	"net"
	"sync"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/go-sql-driver/mysql"

	"github.com/adbc-drivers/cloudsql-go/sqlpool"
)

// apiNet is the wire driver network name the public-API dialer registers
// under.
const apiNet = "cloudsql"

// GoogleAPIClient reaches the instance over the public Cloud SQL API. This
// is the path taken on production hosts that have no proxy stub installed.
type GoogleAPIClient struct {
	opts []cloudsqlconn.Option

	mu     sync.Mutex
	dialer *cloudsqlconn.Dialer
}

func NewGoogleAPIClient(opts ...cloudsqlconn.Option) *GoogleAPIClient {
	return &GoogleAPIClient{opts: opts}
}

func (c *GoogleAPIClient) Name() string       { return "googleapi" }
func (c *GoogleAPIClient) ParamStyle() string { return ParamStyleFormat }

// Connect opens a handle whose connections dial the instance through the
// public API. The dialer is created lazily so that credential resolution
// happens on first use, not at selection time.
func (c *GoogleAPIClient) Connect(ctx context.Context, params Params) (*sql.DB, error) {
	instance := params.Options[ParamInstance]
	if instance == "" {
		return nil, fmt.Errorf("rdbms: googleapi client requires the %q argument", ParamInstance)
	}

	d, err := c.getDialer(ctx)
	if err != nil {
		return nil, fmt.Errorf("rdbms: creating Cloud SQL dialer: %w", err)
	}
	registerAPINet()
	setAPIDialer(instance, d)

	cfg := baseConfig(params)
	cfg.Net = apiNet
	cfg.Addr = instance
	cfg.AllowCleartextPasswords = true // the API transport is already encrypted

	return sqlpool.New(
		sqlpool.WithDriverName("mysql"),
		sqlpool.WithDSN(cfg.FormatDSN()),
		sqlpool.WithSettings(PoolSettings(nil)),
	)
}

func (c *GoogleAPIClient) getDialer(ctx context.Context) (*cloudsqlconn.Dialer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dialer != nil {
		return c.dialer, nil
	}
	d, err := cloudsqlconn.NewDialer(ctx, c.opts...)
	if err != nil {
		return nil, err
	}
	c.dialer = d
	return d, nil
}

var (
	apiNetOnce   sync.Once
	apiDialersMu sync.Mutex
	apiDialers   = make(map[string]*cloudsqlconn.Dialer)
)

func registerAPINet() {
	apiNetOnce.Do(func() {
		mysql.RegisterDialContext(apiNet, func(ctx context.Context, addr string) (net.Conn, error) {
			apiDialersMu.Lock()
			d := apiDialers[addr]
			apiDialersMu.Unlock()
			if d == nil {
				return nil, fmt.Errorf("rdbms: no Cloud SQL dialer registered for instance %q", addr)
			}
			return d.Dial(ctx, addr)
		})
	})
}

func setAPIDialer(instance string, d *cloudsqlconn.Dialer) {
	apiDialersMu.Lock()
	defer apiDialersMu.Unlock()
	apiDialers[instance] = d
}
