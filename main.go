package main

import "nathanbeddoewebdev/dropproxy/cmd"

func main() {
	cmd.Execute()
}
