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
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// echoServer replies to every received datagram, whatever its size, with
// the same bytes after delay.
func echoServer(t *testing.T, delay time.Duration) *net.UDPAddr {
	t.Helper()
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	go func() {
		buf := make([]byte, 128)
		for {
			n, addr, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			time.Sleep(delay)
			_, _ = conn.WriteToUDP(buf[:n], addr)
		}
	}()

	return conn.LocalAddr().(*net.UDPAddr)
}

// silentServer listens but never replies.
func silentServer(t *testing.T) *net.UDPAddr {
	t.Helper()
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	go func() {
		buf := make([]byte, 128)
		for {
			if _, _, err := conn.ReadFromUDP(buf); err != nil {
				return
			}
		}
	}()
	return conn.LocalAddr().(*net.UDPAddr)
}

func TestSingleSuccess(t *testing.T) {
	endpoint := echoServer(t, 100*time.Millisecond)

	resultCh := make(chan SingleResult, 1)
	s := RunSingle(endpoint, time.Second, func(r SingleResult) { resultCh <- r })
	s.Wait()

	res := <-resultCh
	require.NoError(t, res.Err)
	require.False(t, res.Packet.IsNull())
	require.GreaterOrEqual(t, res.RTT, 100*time.Millisecond)
	require.Less(t, res.RTT, 2*time.Second)
}

func TestSingleTimeout(t *testing.T) {
	endpoint := silentServer(t)

	resultCh := make(chan SingleResult, 1)
	s := RunSingle(endpoint, 100*time.Millisecond, func(r SingleResult) { resultCh <- r })
	s.Wait()

	res := <-resultCh
	require.ErrorIs(t, res.Err, ErrTimedOut)
	require.True(t, res.Packet.IsNull())
}

func TestSingleCancel(t *testing.T) {
	endpoint := silentServer(t)

	resultCh := make(chan SingleResult, 1)
	s := RunSingle(endpoint, 5*time.Second, func(r SingleResult) { resultCh <- r })
	time.Sleep(20 * time.Millisecond)
	s.Cancel()
	s.Wait()

	res := <-resultCh
	require.ErrorIs(t, res.Err, ErrAborted)
}

func TestSingleMessageSize(t *testing.T) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	require.NoError(t, err)
	defer conn.Close()
	go func() {
		buf := make([]byte, 128)
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		_ = n
		_, _ = conn.WriteToUDP([]byte("short"), addr)
	}()
	endpoint := conn.LocalAddr().(*net.UDPAddr)

	resultCh := make(chan SingleResult, 1)
	s := RunSingle(endpoint, time.Second, func(r SingleResult) { resultCh <- r })
	s.Wait()

	res := <-resultCh
	require.ErrorIs(t, res.Err, ErrMessageSize)
}
