package main

import (
	"fmt"
	"os"

	_ "go.uber.org/automaxprocs"

	"farmflow-backend/internal/app"
)

func main() {
	if err := app.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
