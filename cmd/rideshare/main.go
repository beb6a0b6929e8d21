package main

import "github.com/example/rideshare/internal/cmd"

func main() {
	cmd.Execute()
}
