package main

import "github.com/chenjicheng/upmc-release/cmd/upmc-release/cmd"

func main() {
	cmd.Execute()
}
