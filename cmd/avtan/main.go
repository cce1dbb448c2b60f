package main

import "github.com/DrSkyle/avtan/cmd/avtan/commands"

func main() {
	commands.Execute()
}
