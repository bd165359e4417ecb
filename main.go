package main

import "github.com/pliu/warbler/internal/cli"

func main() {
	cli.Execute()
}
