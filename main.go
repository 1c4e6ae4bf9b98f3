package main

import "imgcrush/cmd"

func main() {
	cmd.Execute()
}
