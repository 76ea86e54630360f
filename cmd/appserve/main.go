package main

import "github.com/aalvaropc/appserve/internal/cli"

func main() {
	cli.Execute()
}
