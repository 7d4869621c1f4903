package main

import "github.com/andrewarrow/weave/internal/cli"

func main() {
	cli.Execute()
}
