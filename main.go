package main

import "github.com/MwillianM/FlchainExploration/cmd"

func main() {
	cmd.Execute()
}
