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
	"net"
	"sync"
)

// Stub is an active service proxy installed by the hosting runtime.
// For the RDBMS service it provides the transport to the managed proxy.
type Stub interface {
	// DialContext opens a connection to the named instance through the
	// proxy mechanism this stub fronts.
	DialContext(ctx context.Context, instance string) (net.Conn, error)
}

// StubRegistry answers whether a service has an active stub in this process.
type StubRegistry interface {
	// Stub returns the stub registered for the service, or nil.
	Stub(service string) Stub
}

// MapRegistry is a mutable StubRegistry backed by a map.
type MapRegistry struct {
	mu    sync.RWMutex
	stubs map[string]Stub
}

func NewMapRegistry() *MapRegistry {
	return &MapRegistry{stubs: make(map[string]Stub)}
}

// Register installs (or replaces) the stub for a service.
func (r *MapRegistry) Register(service string, s Stub) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stubs[service] = s
}

// Stub implements StubRegistry.
func (r *MapRegistry) Stub(service string) Stub {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stubs[service]
}

var defaultRegistry = NewMapRegistry()

// DefaultRegistry returns the process-wide stub registry. The hosting
// runtime populates it at startup; it is empty outside managed runtimes.
func DefaultRegistry() StubRegistry {
	return defaultRegistry
}

// RegisterStub installs a stub in the process-wide registry.
func RegisterStub(service string, s Stub) {
	defaultRegistry.Register(service, s)
}
