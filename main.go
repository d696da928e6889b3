package main

import "dosug/cmd"

func main() {
	cmd.Execute()
}
