package main

import "github.com/Daskott/instantdoc/cmd"

func main() {
	cmd.Execute()
}
