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

// SelectClient picks the access implementation for the environment.
// Ordered, first match wins:
//
//  1. development sandbox  -> sandbox client
//  2. active rdbms stub    -> proxy-backed client
//  3. otherwise            -> public-API client
//
// Selection always terminates with a choice; an unreachable service shows
// up as whatever error the chosen client returns on first use.
func SelectClient(env Environment) Client {
	if env.IsDevelopment() {
		return NewSandboxClient()
	}
	if env.Stubs != nil {
		if stub := env.Stubs.Stub(ProxyService); stub != nil {
			return NewProxyClient(stub)
		}
	}
	return NewGoogleAPIClient()
}
