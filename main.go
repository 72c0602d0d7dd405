package main

import (
	"fmt"
	"os"

	"github.com/hatimiti/easyframework/app/hello"
	"github.com/hatimiti/easyframework/framework/console"
)

func main() {
	if err := console.Execute(hello.Namespace); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
