package main

import (
	"amrscan/cmd"
)

func main() {
	cmd.Execute() // initialize cobra commands
}
