package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/singularity/internal/server/admin"
)

func main() {
	if err := admin.Main(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("admin: %v", err)
	}
}
