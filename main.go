package main

import "github.com/cppla/forumcore/cmd"

func main() {
	cmd.Execute()
}
