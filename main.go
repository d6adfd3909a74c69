package main

import (
	"os"

	"github.com/sevahub/volunteer-shortlister/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
