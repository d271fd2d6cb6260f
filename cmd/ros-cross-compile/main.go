package main

import (
	rcccmd "github.com/teodormadan/cross-compile/cmd"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	rcccmd.SetVersionInfo(version, commit)
	rcccmd.Execute()
}
