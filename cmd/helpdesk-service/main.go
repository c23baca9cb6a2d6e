package main

import (
	"log"

	"github.com/it-helpdesk/helpdesk-service/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
