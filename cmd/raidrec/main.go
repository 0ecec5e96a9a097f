package main

import "github.com/livp123/raidrec/cmd/raidrec/commands"

func main() {
	commands.Execute()
}
