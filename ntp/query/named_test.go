/*
Copyright (c) ntproto authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package query

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeResolver is a hand-written stand-in for the Resolver collaborator,
// used instead of a go.uber.org/mock-generated type since these tests
// need only a handful of fixed responses (see DESIGN.md).
type fakeResolver struct {
	addrs []*net.UDPAddr
	err   error
}

func (f fakeResolver) Resolve(context.Context, string, string) ([]*net.UDPAddr, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.addrs, nil
}

func TestNamedResolveError(t *testing.T) {
	r := fakeResolver{err: errors.New("no such host")}
	resultCh := make(chan NamedResult, 1)
	RunNamed(r, "nonexistent.invalid", time.Second, func(res NamedResult) { resultCh <- res })

	res := <-resultCh
	require.Equal(t, ResolveError, res.Status)
	require.Empty(t, res.Resolved)
}

func TestNamedSucceeded(t *testing.T) {
	endpoint := echoServer(t, 5*time.Millisecond)
	r := fakeResolver{addrs: []*net.UDPAddr{endpoint}}

	resultCh := make(chan NamedResult, 1)
	RunNamed(r, "whatever:123", time.Second, func(res NamedResult) { resultCh <- res })

	res := <-resultCh
	require.Equal(t, Succeeded, res.Status)
	require.Equal(t, endpoint.String(), res.Resolved)
	require.False(t, res.Packet.IsNull())
}

func TestNamedTimeoutOnSilentServer(t *testing.T) {
	endpoint := silentServer(t)
	r := fakeResolver{addrs: []*net.UDPAddr{endpoint}}

	resultCh := make(chan NamedResult, 1)
	RunNamed(r, "whatever:123", 100*time.Millisecond, func(res NamedResult) { resultCh <- res })

	res := <-resultCh
	require.Equal(t, TimeoutError, res.Status)
}

func TestNamedDefaultPort(t *testing.T) {
	host, port := splitHostPort("example.invalid")
	require.Equal(t, "example.invalid", host)
	require.Equal(t, DefaultPort, port)

	host, port = splitHostPort("example.invalid:ntp")
	require.Equal(t, "example.invalid", host)
	require.Equal(t, "ntp", port)
}

func TestNamedCancel(t *testing.T) {
	endpoint := silentServer(t)
	r := fakeResolver{addrs: []*net.UDPAddr{endpoint}}

	resultCh := make(chan NamedResult, 1)
	n := RunNamed(r, "whatever:123", 5*time.Second, func(res NamedResult) { resultCh <- res })
	time.Sleep(20 * time.Millisecond)
	n.Cancel()

	res := <-resultCh
	require.Equal(t, Cancelled, res.Status)
}
