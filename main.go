package main

import "github.com/chukul/ssostat/cmd"

func main() {
	cmd.Execute()
}
