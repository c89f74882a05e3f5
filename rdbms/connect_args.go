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
	"fmt"
	"net/url"
	"strings"

	"github.com/adbc-drivers/cloudsql-go/jdbctype"
)

// TranslateConnectArgs converts a parsed connection URL of the form
//
//	cloudsql:///<dbname>?instance=<instance-identifier>
//
// into the keyword arguments the selected client expects. The base
// translation (database name, credentials, host) is always carried through.
// Outside the development sandbox three more arguments are added: an empty
// DSN placeholder (the default vendor wrapper layer is bypassed), the
// instance identifier copied verbatim from the query string, and the
// converter table to install on the connection.
func TranslateConnectArgs(u *url.URL, env Environment) (Params, error) {
	p := Params{Options: make(map[string]string)}

	if db := strings.TrimPrefix(u.Path, "/"); db != "" {
		p.Options[ParamDatabase] = db
	}
	if u.User != nil {
		if name := u.User.Username(); name != "" {
			p.Options[ParamUser] = name
		}
		if pw, ok := u.User.Password(); ok {
			p.Options[ParamPassword] = pw
		}
	}
	if host := u.Hostname(); host != "" {
		p.Options[ParamHost] = host
	}
	if port := u.Port(); port != "" {
		p.Options[ParamPort] = port
	}

	if env.IsDevelopment() {
		// The sandbox client supplies its own defaults.
		return p, nil
	}

	instance := u.Query().Get(ParamInstance)
	if instance == "" {
		return Params{}, fmt.Errorf("rdbms: connection URL %q is missing the required %q query parameter", u.Redacted(), ParamInstance)
	}
	p.Options[ParamDSN] = ""
	p.Options[ParamInstance] = instance
	p.Converters = jdbctype.Decoders
	return p, nil
}
