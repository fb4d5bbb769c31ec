package main

import "github.com/mpetrenko/wine-bundler/cmd/wine-bundler/cmd"

func main() {
	cmd.Execute()
}
