package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/singularity/internal/server"
)

func main() {
	if err := server.Main(context.Background(), os.Args[1:]); err != nil {
		log.Fatalf("%v", err)
	}
}
