package main

import "github.com/accesstbilq/jovian/cmd"

func main() {
	cmd.Execute()
}
