package main

import (
	"github.com/huangsam/prlens/cmd"
	"github.com/huangsam/prlens/internal/contract"
	"github.com/huangsam/prlens/internal/runstore"
)

func main() {
	if err := cmd.Execute(); err != nil {
		runstore.CloseTracking()
		contract.LogFatal("command failed", err)
	}
	runstore.CloseTracking()
}
