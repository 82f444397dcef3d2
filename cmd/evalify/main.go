// Package main is the entry point for the evalify attrition service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	_ = godotenv.Load(".env")

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "evalify:", err)
		os.Exit(1)
	}
}
