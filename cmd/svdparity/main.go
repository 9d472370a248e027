package main

import "github.com/OpenTraceLab/svdparity/cmd/svdparity/cmd"

func main() {
	cmd.Execute()
}
