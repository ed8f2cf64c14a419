package main

import (
	"log"

	"github.com/vcentea/crowd-analyze-with-ai/internal"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/service"
)

func main() {

	action := "run-server"

	processAction(action)
}

func processAction(arg string) {
	log.Println("Processing action:", arg)

	service := service.NewServiceWithRepo()

	switch arg {
	case "run-server":
		internal.RunServer(service)
	default:
		panic("invalid action")
	}
}
