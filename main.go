package main

import "github.com/theirongolddev/bunkerdash/cmd"

func main() {
	cmd.Execute()
}
