// Package main is the agentperf CLI entrypoint.
package main

import "github.com/aps-wallet/agentperf/internal/cli"

func main() {
	cli.Execute()
}
