package main

import (
	"github.com/caesium-cloud/gqlambda/cmd"
	"github.com/caesium-cloud/gqlambda/pkg/env"
	"github.com/caesium-cloud/gqlambda/pkg/log"
)

func main() {
	if err := env.Process(); err != nil {
		log.Fatal("environment failure", "error", err)
	}

	if err := cmd.Execute(); err != nil {
		log.Fatal("gqlambda failure", "error", err)
	}
}
