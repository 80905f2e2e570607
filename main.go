package main

import "github.com/llehouerou/novatone/internal/cli"

func main() {
	cli.Execute()
}
