package main

import (
	"github.com/reformlab/reformer/cmd"
	"github.com/reformlab/reformer/pkg/env"
	"github.com/reformlab/reformer/pkg/log"
)

func main() {
	if err := env.Process(); err != nil {
		log.Fatal("environment failure", "error", err)
	}

	if err := cmd.Execute(); err != nil {
		log.Fatal("reformer failure", "error", err)
	}
}
