package main

import "github.com/pagekeep/pagekeep/cmd"

func main() {
	cmd.Execute()
}
