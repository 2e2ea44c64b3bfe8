package main

import (
	"github.com/lostbeltno7/GameGuardian/internal/cli"
)

func main() {
	cli.Execute()
}
