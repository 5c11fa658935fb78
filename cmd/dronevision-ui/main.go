package main

import (
	"github.com/larsks/dronevision/internal/cli"
	_ "github.com/larsks/dronevision/internal/logsetup"
	"github.com/larsks/dronevision/internal/ui"
)

func main() {
	cli.StandardMain(
		func() cli.Configurable { return ui.NewConfig() },
		ui.NewUIHandler(),
	)
}
