//go:build cli
// +build cli

package main

import (
	_ "erp.GO/custom"

	"erp.GO/cmd"
	"erp.GO/config"
)

func main() {
	config.LoadEnv()
	cmd.Execute()
}
