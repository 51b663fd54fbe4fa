package main

import (
	"github.com/undercut/pitwall/internal/cli"
)

var (
	version = "0.2.0"
)

func main() {
	cli.SetVersion(version)
	cli.Execute()
}
