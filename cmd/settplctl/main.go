package main

import "settemplatesync/internal/cli"

func main() {
	cli.Execute()
}
