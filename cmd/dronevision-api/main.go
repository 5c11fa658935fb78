package main

import (
	"github.com/larsks/dronevision/internal/api"
	"github.com/larsks/dronevision/internal/cli"
	_ "github.com/larsks/dronevision/internal/logsetup"
)

func main() {
	cli.StandardMain(
		func() cli.Configurable { return api.NewConfig() },
		api.NewAPIHandler(),
	)
}
