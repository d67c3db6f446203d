// Package main is the entry point for the unilog command line tool.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/kart-io/unilog/internal/unilogctl"
)

func main() {
	unilogctl.NewApp().Run()
}
