package main

import "github.com/planbiir/gpxpack/internal/cli"

func main() {
	cli.Execute()
}
