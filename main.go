package main

import "github.com/graphshift/graphshift/pkg/cli"

func main() {
	cli.Execute()
}
