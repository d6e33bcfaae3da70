package main

import "github.com/caseif/fs2sbc/cmd"

func main() {
	cmd.Execute()
}
