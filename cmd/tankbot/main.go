package main

import "github.com/nfrund/tankbot/cmd/tankbot/cmd"

func main() {
	cmd.Execute()
}
