package main

import "github.com/notargets/femview/cmd"

func main() {
	cmd.Execute()
}
