package main

import "locedit/internal/cli"

func main() {
	cli.Execute()
}
