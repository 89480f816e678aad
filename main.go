package main

import "github.com/autobot-dev/autobot/cmd"

func main() {
	cmd.Execute()
}
