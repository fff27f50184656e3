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
	"time"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ntproto/ntproto/calendar"
	"github.com/ntproto/ntproto/ntp/client"
	"github.com/ntproto/ntproto/ntp/query"
)

var queryTimeout time.Duration

var queryCmd = &cobra.Command{
	Use:   "query <server>",
	Short: "run a single NamedQuery against one server and print the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().DurationVarP(&queryTimeout, "timeout", "t", 0, "overall timeout (default: library default, 5s)")
}

func runQuery(cmd *cobra.Command, args []string) error {
	configureVerbosity()
	server := args[0]

	done := make(chan query.NamedResult, 1)
	c := client.New(func(res query.NamedResult) { done <- res })
	defer c.Close()

	c.Query(server, queryTimeout)
	res := <-done

	printResult(res)
	if res.Status != query.Succeeded {
		return fmt.Errorf("query to %s did not succeed: %s", server, res.Status)
	}
	return nil
}

func printResult(res query.NamedResult) {
	statusStr := statusColor(res.Status)(res.Status.String())
	fmt.Printf("%-32s %-22s %-10s rtt=%s\n", res.Name, res.Resolved, statusStr, res.RTT)
	if res.Status == query.Succeeded {
		dt := calendar.FromTime(res.Packet.TransmitTimestamp().Time())
		log.Debugf("server transmit time: %s", dt.Format("yyyy-MM-dd hh:mm:ss.fff"))
	}
}

func statusColor(s query.Status) func(format string, a ...interface{}) string {
	if s == query.Succeeded {
		return color.GreenString
	}
	return color.RedString
}
