package main

import "github.com/josephlewis42/shellington/cmd"

func main() {
	cmd.Execute()
}
