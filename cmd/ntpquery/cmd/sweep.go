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

package cmd

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/eclesh/welford"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	ntpconfig "github.com/ntproto/ntproto/cmd/ntpquery/config"
	"github.com/ntproto/ntproto/ntp/client"
	"github.com/ntproto/ntproto/ntp/query"
)

var (
	sweepINIFlag   string
	sweepYAMLFlag  string
	sweepGroupFlag string
	sweepTimeout   time.Duration
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "query every server in a configured list concurrently and summarize the results",
	RunE:  runSweep,
}

func init() {
	sweepCmd.Flags().StringVar(&sweepINIFlag, "ini", "", "path to an INI server list")
	sweepCmd.Flags().StringVar(&sweepYAMLFlag, "yaml", "", "path to a YAML server-group list")
	sweepCmd.Flags().StringVar(&sweepGroupFlag, "group", "", "YAML group name to sweep (default: all groups)")
	sweepCmd.Flags().DurationVarP(&sweepTimeout, "timeout", "t", 0, "per-server timeout (default: library default, 5s)")
}

func loadSweepServers() ([]string, error) {
	var servers []string
	if sweepINIFlag != "" {
		list, err := ntpconfig.LoadINI(sweepINIFlag)
		if err != nil {
			return nil, err
		}
		servers = append(servers, list.Servers...)
	}
	if sweepYAMLFlag != "" {
		lists, err := ntpconfig.LoadYAML(sweepYAMLFlag)
		if err != nil {
			return nil, err
		}
		for _, l := range lists {
			if sweepGroupFlag != "" && l.Name != sweepGroupFlag {
				continue
			}
			servers = append(servers, l.Servers...)
		}
	}
	if len(servers) == 0 {
		return nil, fmt.Errorf("no servers configured: pass --ini and/or --yaml")
	}
	return servers, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	configureVerbosity()
	servers, err := loadSweepServers()
	if err != nil {
		return err
	}

	var mu sync.Mutex
	results := make([]query.NamedResult, 0, len(servers))
	var wg sync.WaitGroup
	wg.Add(len(servers))

	c := client.New(func(res query.NamedResult) {
		mu.Lock()
		results = append(results, res)
		mu.Unlock()
		wg.Done()
	})
	defer c.Close()

	log.Infof("sweeping %d server(s)", len(servers))
	for _, s := range servers {
		c.Query(s, sweepTimeout)
	}
	wg.Wait()

	renderSweepReport(results)
	return nil
}

func renderSweepReport(results []query.NamedResult) {
	useColor := term.IsTerminal(int(os.Stdout.Fd()))

	offsets := welford.New()
	table := tablewriter.NewWriter(os.Stdout)
	table.SetColWidth(24)
	table.SetHeader([]string{"Server", "Resolved", "Status", "RTT", "Offset"})

	for _, res := range results {
		statusStr := res.Status.String()
		if useColor {
			statusStr = statusColor(res.Status)(statusStr)
		}
		offsetStr := "-"
		if res.Status == query.Succeeded {
			offset := res.Packet.OffsetAt(time.Now())
			offsets.Add(float64(offset))
			offsetStr = offset.String()
		}
		table.Append([]string{res.Name, res.Resolved, statusStr, res.RTT.String(), offsetStr})
	}
	table.Render()

	if offsets.Count() > 0 {
		fmt.Printf(
			"offset summary over %d successful quer%s: mean=%s stddev=%s\n",
			offsets.Count(),
			plural(offsets.Count()),
			time.Duration(offsets.Mean()),
			time.Duration(offsets.Stddev()),
		)
	}
}

func plural(n int64) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
