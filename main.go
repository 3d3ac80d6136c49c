// Package main is the entry point for the driftplay player CLI.
package main

import (
	"github.com/driftplay/player/cmd"
	"github.com/driftplay/player/config"
	"github.com/driftplay/player/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
