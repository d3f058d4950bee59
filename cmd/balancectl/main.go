package main

import "balance_insight/pkg/cli"

func main() {
	cli.Execute()
}
