package main

import (
	"github.com/larsks/dronevision/internal/cli"
	"github.com/larsks/dronevision/internal/dvctl"
	_ "github.com/larsks/dronevision/internal/logsetup"
)

func main() {
	cli.SubCommandMain(
		func() cli.Configurable { return dvctl.NewConfig() },
		dvctl.NewHandler(),
	)
}
