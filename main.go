package main

import "bunman/cmd"

func main() {
	cmd.Execute()
}
