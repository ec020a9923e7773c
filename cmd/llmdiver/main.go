package main

import (
	"github.com/greenantix/llmdiver/internal/cli"
)

func main() {
	cli.Execute()
}
