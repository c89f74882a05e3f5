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

// Package sqlpool opens database/sql handles with an explicit
// connection-reuse policy.
package sqlpool

import "database/sql"

// New opens the database and applies the configured pool policy.
func New(opts ...Option) (*sql.DB, error) {
	cfg := &config{settings: DefaultSettings()}
	for _, o := range opts {
		o(cfg)
	}

	db, err := sql.Open(cfg.driverName, cfg.dsn)
	if err != nil {
		return nil, err
	}
	Apply(db, cfg.settings)
	return db, nil
}

// Apply installs the pool policy on an already-open handle.
func Apply(db *sql.DB, s Settings) {
	db.SetMaxOpenConns(s.MaxOpenConns)
	db.SetMaxIdleConns(s.MaxIdleConns)
	db.SetConnMaxLifetime(s.ConnMaxLifetime)
	db.SetConnMaxIdleTime(s.ConnMaxIdleTime)
}
