package main

import "sarbot/internal/cli"

func main() {
	cli.Execute()
}
