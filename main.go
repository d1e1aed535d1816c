package main

import "github.com/fakeyudi/recall/cmd"

func main() {
	cmd.Execute()
}
