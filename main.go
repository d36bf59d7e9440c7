package main

import (
	"os"

	"github.com/abhisek/quizsolver/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
