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

	"github.com/go-sql-driver/mysql"

	"github.com/adbc-drivers/cloudsql-go/sqlpool"
)

// proxyNet is the wire driver network name the proxy dialer registers under.
const proxyNet = "cloudsql-proxy"

// ProxyClient reaches the instance through the runtime's active RDBMS stub.
// Every dial goes through the stub's proxy transport; the stub owns
// authentication and socket lifetime.
type ProxyClient struct {
	stub Stub
}

func NewProxyClient(stub Stub) *ProxyClient {
	registerProxyNet()
	return &ProxyClient{stub: stub}
}

func (c *ProxyClient) Name() string       { return "apiproxy" }
func (c *ProxyClient) ParamStyle() string { return ParamStyleFormat }

// Connect opens a handle whose connections dial through the stub.
func (c *ProxyClient) Connect(ctx context.Context, params Params) (*sql.DB, error) {
	instance := params.Options[ParamInstance]
	if instance == "" {
		return nil, fmt.Errorf("rdbms: apiproxy client requires the %q argument", ParamInstance)
	}

	cfg := baseConfig(params)
	cfg.Net = proxyNet
	cfg.Addr = instance
	setDialer(instance, c.stub)

	return sqlpool.New(
		sqlpool.WithDriverName("mysql"),
		sqlpool.WithDSN(cfg.FormatDSN()),
		sqlpool.WithSettings(PoolSettings(nil)),
	)
}

// The wire driver keeps a single process-wide dialer per network name, so
// instance-to-stub routing goes through a shared table.
var (
	proxyNetOnce sync.Once
	proxyStubsMu sync.Mutex
	proxyStubs   = make(map[string]Stub)
)

func registerProxyNet() {
	proxyNetOnce.Do(func() {
		mysql.RegisterDialContext(proxyNet, func(ctx context.Context, addr string) (net.Conn, error) {
			proxyStubsMu.Lock()
			stub := proxyStubs[addr]
			proxyStubsMu.Unlock()
			if stub == nil {
				return nil, fmt.Errorf("rdbms: no proxy stub registered for instance %q", addr)
			}
			return stub.DialContext(ctx, addr)
		})
	})
}

func setDialer(instance string, stub Stub) {
	proxyStubsMu.Lock()
	defer proxyStubsMu.Unlock()
	proxyStubs[instance] = stub
}
