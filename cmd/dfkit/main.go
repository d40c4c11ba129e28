package main

import "github.com/aalvaropc/dfkit/internal/cli"

func main() {
	cli.Execute()
}
