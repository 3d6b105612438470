package main

import (
	"github.com/krehermann/stackvm/cmd"
)

// reads a hex program, decodes and runs it
//
//	3 + 4
//	7F 00 00 00 03
//	7F 00 00 00 04
//	01
//	F3
//	=> 7F000000037F0000000401F3
func main() {
	cmd.Execute()
}
