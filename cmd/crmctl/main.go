package main

import (
	"context"
	"fmt"
	"os"

	"crm/internal/cli"
)

func main() {
	command, err := cli.NewApp(os.Stdout).Command()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := command.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
