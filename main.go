package main

import "github.com/jfmyers9/simplay/cmd"

func main() {
	cmd.Execute()
}
