package main

import (
	"fmt"
	"os"

	"repolens/internal/cli"
)

func main() {
	cmd := cli.NewRootCmd(func(opts cli.Options) (cli.Backend, error) {
		app, err := NewApp(opts)
		if err != nil {
			return nil, err
		}
		return app, nil
	})
	if err := cli.Execute(cmd); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
