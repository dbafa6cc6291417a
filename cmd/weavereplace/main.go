package main

import (
	"os"

	"github.com/solatis/weavereplace/cmd/weavereplace/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
