package main

import (
	"os"

	"github.com/ThatCatDev/modelinspect/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
