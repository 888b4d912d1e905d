package main

import (
	"os"

	"github.com/OMERKURIEL/etl-assignment/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:], os.Stdout, os.Stderr))
}
