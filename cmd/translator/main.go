package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	ctx := context.Background()
	root := NewRootCmd()
	root.SetArgs(os.Args[1:])

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
