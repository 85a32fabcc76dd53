package main

import (
	"github.com/pokeslot/slotserver/internal/cli"
)

func main() {
	cli.Execute()
}
