package main

import (
	"github.com/jivitsolutions/jivit-site/cmd"
)

func main() {
	cmd.Execute()
}
