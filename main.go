package main

import "github.com/shouni/go-lead-harvester/cmd"

func main() {
	cmd.Execute()
}
