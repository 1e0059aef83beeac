package main

import (
	"github.com/lmercier/urlalias/cmd"

	// Subcommands register themselves with the root command in their init().
	_ "github.com/lmercier/urlalias/cmd/cli"
	_ "github.com/lmercier/urlalias/cmd/server"
)

func main() {
	cmd.Execute()
}
