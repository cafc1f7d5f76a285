package main

import "github.com/notargets/smartair/cmd"

func main() {
	cmd.Execute()
}
