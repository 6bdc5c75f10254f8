package main

import "github.com/vanpelt/headcord/internal/cmd"

func main() {
	cmd.Execute()
}
