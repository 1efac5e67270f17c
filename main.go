package main

import "sportsdl/cmd"

func main() {
	cmd.Execute()
}
