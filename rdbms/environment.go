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

// Package rdbms selects and drives the low-level Cloud SQL access client.
//
// A process talks to Cloud SQL through one of three transports depending on
// where it runs: the local development sandbox, the runtime's RDBMS proxy
// stub, or the public API. This package detects the environment, picks the
// client, and translates connection URLs into the keyword arguments the
// chosen client expects.
package rdbms

import (
	"os"
	"strings"
)

const (
	// ServerSoftwareEnv is the process variable the hosting runtime sets to
	// identify itself.
	ServerSoftwareEnv = "SERVER_SOFTWARE"

	// devPrefix marks the local development sandbox runtime.
	devPrefix = "Development/"

	// ProxyService is the registry key under which the hosting runtime
	// installs the RDBMS proxy stub.
	ProxyService = "rdbms"
)

// Environment captures the process-wide state the client selector depends
// on. It is passed explicitly so tests can simulate each deployment target
// without touching process globals.
type Environment struct {
	// ServerSoftware is the hosting runtime's identification string.
	ServerSoftware string
	// Stubs is the service-stub registry for this process. May be nil.
	Stubs StubRegistry
}

// IsDevelopment reports whether the process runs in the local development
// sandbox. Absent or unrecognized runtime strings count as production.
func (e Environment) IsDevelopment() bool {
	return strings.HasPrefix(e.ServerSoftware, devPrefix)
}

// SystemEnvironment builds an Environment from the real process state:
// the SERVER_SOFTWARE variable and the process-wide stub registry.
func SystemEnvironment() Environment {
	return Environment{
		ServerSoftware: os.Getenv(ServerSoftwareEnv),
		Stubs:          DefaultRegistry(),
	}
}
