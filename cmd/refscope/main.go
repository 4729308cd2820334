package main

import (
	"github.com/refscope/refscope/cmd/refscope/cmd"
)

func main() {
	cmd.Execute()
}
