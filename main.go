package main

import "github.com/sw33tLie/groupgen/cmd"

func main() {
	cmd.Execute()
}
