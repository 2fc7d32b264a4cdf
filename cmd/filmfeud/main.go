package main

import "github.com/Clark-Hu/filmfeud/cmd/filmfeud/commands"

func main() {
	commands.Execute()
}
