package main

import "kvasir/cmd"

func main() {
	cmd.Execute()
}
