package main

import "github.com/CraigKelly/nlmix/cmd"

// TODO: trace checkpointing so that long chains can be frozen and resumed

func main() {
	cmd.Execute()
}
