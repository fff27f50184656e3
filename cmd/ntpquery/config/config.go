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

// Package config loads the server lists that the sweep subcommand
// queries, from either a flat INI file or a YAML file of named
// server groups.
package config

import (
	"fmt"
	"os"

	"github.com/go-ini/ini"
	yaml "gopkg.in/yaml.v2"
)

// ServerList is an ordered, named set of NTP server strings (the
// server-string grammar of a library query: host, host:port or
// host:service).
type ServerList struct {
	Name    string
	Servers []string
}

// LoadINI reads a flat INI file whose [servers] section maps an
// arbitrary key to one server string per entry, e.g.:
//
//	[servers]
//	primary = ntp1.example.com
//	backup  = ntp2.example.com:123
//
// The returned ServerList's Name is always "default".
func LoadINI(path string) (ServerList, error) {
	f, err := ini.Load(path)
	if err != nil {
		return ServerList{}, fmt.Errorf("loading ini config %q: %w", path, err)
	}
	section, err := f.GetSection("servers")
	if err != nil {
		return ServerList{}, fmt.Errorf("ini config %q has no [servers] section: %w", path, err)
	}
	list := ServerList{Name: "default"}
	for _, key := range section.Keys() {
		list.Servers = append(list.Servers, key.String())
	}
	return list, nil
}

// yamlDocument is the on-disk shape of a YAML server-group file.
type yamlDocument struct {
	Groups map[string][]string `yaml:"groups"`
}

// LoadYAML reads a YAML file of named server groups:
//
//	groups:
//	  prod:
//	    - ntp1.example.com
//	    - ntp2.example.com:123
//	  lab:
//	    - lab-ntp.example.com
func LoadYAML(path string) ([]ServerList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading yaml config %q: %w", path, err)
	}
	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing yaml config %q: %w", path, err)
	}
	lists := make([]ServerList, 0, len(doc.Groups))
	for name, servers := range doc.Groups {
		lists = append(lists, ServerList{Name: name, Servers: servers})
	}
	return lists, nil
}
