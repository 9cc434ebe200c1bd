package main

import "github.com/partyquiz/partyquiz/internal/cli"

func main() {
	cli.Execute()
}
