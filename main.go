package main

import "forest-tools/cmd"

func main() {
	cmd.Execute()
}
