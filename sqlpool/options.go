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

package sqlpool

import "time"

// Settings describes the connection-reuse policy applied to a *sql.DB.
type Settings struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultSettings is the standard pooled configuration.
func DefaultSettings() Settings {
	return Settings{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

// NoPooling is the never-reuse policy: no idle connections are kept, so
// every request dials fresh. Used for transports that recycle sockets
// outside the process's control, where any cached connection may already be
// dead.
func NoPooling() Settings {
	return Settings{
		MaxOpenConns: 0, // unlimited; each is short-lived
		MaxIdleConns: 0,
	}
}

// Option configures the wrapper (driver name, DSN, pool policy).
type Option func(*config)

type config struct {
	driverName string
	dsn        string
	settings   Settings
}

// WithDriverName sets the SQL driver name (e.g. "mysql").
func WithDriverName(name string) Option {
	return func(c *config) { c.driverName = name }
}

// WithDSN sets the connection URI.
func WithDSN(dsn string) Option {
	return func(c *config) { c.dsn = dsn }
}

// WithSettings replaces the pool policy.
func WithSettings(s Settings) Option {
	return func(c *config) { c.settings = s }
}
