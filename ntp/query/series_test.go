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
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// garbageServer replies with a payload that is never 48 bytes.
func garbageServer(t *testing.T) (*net.UDPAddr, *int32) {
	t.Helper()
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	var hits int32
	go func() {
		buf := make([]byte, 128)
		for {
			n, addr, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			atomic.AddInt32(&hits, 1)
			_ = n
			_, _ = conn.WriteToUDP([]byte("nope"), addr)
		}
	}()
	return conn.LocalAddr().(*net.UDPAddr), &hits
}

func TestSeriesFailover(t *testing.T) {
	e1, hits1 := garbageServer(t)
	e2 := silentServer(t)
	e3 := echoServer(t, 10*time.Millisecond)

	resultCh := make(chan SeriesResult, 1)
	sr := RunSeries([]*net.UDPAddr{e1, e2, e3}, 150*time.Millisecond, 2*time.Second, func(r SeriesResult) {
		resultCh <- r
	})
	require.NotNil(t, sr)
	sr.Wait()

	res := <-resultCh
	require.NoError(t, res.Err)
	require.Equal(t, e3.String(), res.Endpoint.String())
	require.Equal(t, int32(1), atomic.LoadInt32(hits1))
}

func TestSeriesEmptyEndpointsNoOp(t *testing.T) {
	sr := RunSeries(nil, 0, 0, func(SeriesResult) {})
	require.Nil(t, sr)
}

func TestSeriesOverallTimeout(t *testing.T) {
	e1 := silentServer(t)
	e2 := silentServer(t)

	resultCh := make(chan SeriesResult, 1)
	sr := RunSeries([]*net.UDPAddr{e1, e2}, 5*time.Second, 100*time.Millisecond, func(r SeriesResult) {
		resultCh <- r
	})
	require.NotNil(t, sr)
	sr.Wait()

	res := <-resultCh
	require.ErrorIs(t, res.Err, ErrTimedOut)
}
