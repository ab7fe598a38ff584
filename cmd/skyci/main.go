package main

import (
	skycicmd "github.com/initializ/skyci/cmd"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	skycicmd.SetVersionInfo(version, commit)
	skycicmd.Execute()
}
