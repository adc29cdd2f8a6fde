package main

import "github.com/darmiel/zenkey/cmd"

func main() {
	cmd.Execute()
}
