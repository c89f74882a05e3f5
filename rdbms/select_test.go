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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStub struct{}

func (fakeStub) DialContext(ctx context.Context, instance string) (net.Conn, error) {
	return nil, nil
}

func TestSelectClientSandbox(t *testing.T) {
	env := Environment{ServerSoftware: "Development/2.0"}
	client := SelectClient(env)
	require.IsType(t, &SandboxClient{}, client)
	assert.Equal(t, "sandbox", client.Name())
}

func TestSelectClientProxy(t *testing.T) {
	reg := NewMapRegistry()
	reg.Register(ProxyService, fakeStub{})
	env := Environment{
		ServerSoftware: "Google App Engine/1.9.38",
		Stubs:          reg,
	}
	client := SelectClient(env)
	require.IsType(t, &ProxyClient{}, client)
	assert.Equal(t, "apiproxy", client.Name())
}

func TestSelectClientGoogleAPI(t *testing.T) {
	// An empty registry behaves like no stub at all.
	env := Environment{
		ServerSoftware: "Google App Engine/1.9.38",
		Stubs:          NewMapRegistry(),
	}
	client := SelectClient(env)
	require.IsType(t, &GoogleAPIClient{}, client)
	assert.Equal(t, "googleapi", client.Name())

	// So does a nil registry.
	client = SelectClient(Environment{ServerSoftware: "Google App Engine/1.9.38"})
	require.IsType(t, &GoogleAPIClient{}, client)
}

func TestClientParamStyle(t *testing.T) {
	for _, client := range []Client{
		NewSandboxClient(),
		NewProxyClient(fakeStub{}),
		NewGoogleAPIClient(),
	} {
		assert.Equal(t, ParamStyleFormat, client.ParamStyle(), client.Name())
	}
}
