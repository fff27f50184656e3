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

// Package resolver turns a host+service pair into the ordered list of
// IPv4 UDP endpoints a SeriesQuery fails over across.
package resolver

import (
	"context"
	"fmt"
	"net"
)

// Resolver is the DNS/service-database collaborator NamedQuery depends
// on. It is a narrow interface so tests can substitute a mock rather
// than hitting real DNS, per the collaborator contract in §1.
type Resolver interface {
	Resolve(ctx context.Context, host, port string) ([]*net.UDPAddr, error)
}

// System resolves host+port using the operating system's resolver:
// net.DefaultResolver for hostnames and IP literals, net.LookupPort for
// service names (e.g. "ntp").
type System struct{}

// Resolve implements Resolver.
func (System) Resolve(ctx context.Context, host, port string) ([]*net.UDPAddr, error) {
	portNum, err := net.DefaultResolver.LookupPort(ctx, "udp", port)
	if err != nil {
		return nil, fmt.Errorf("resolving service %q: %w", port, err)
	}

	ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("resolving host %q: %w", host, err)
	}

	var addrs []*net.UDPAddr
	for _, ip := range ips {
		v4 := ip.IP.To4()
		if v4 == nil {
			// IPv6 literals are out of scope per §6.
			continue
		}
		addrs = append(addrs, &net.UDPAddr{IP: v4, Port: portNum, Zone: ip.Zone})
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("host %q has no IPv4 addresses", host)
	}
	return addrs, nil
}
