package main

import (
	"fmt"
	"os"

	"github.com/gnosislabs/gnosis-api/cmd/cli/auth"
	"github.com/gnosislabs/gnosis-api/cmd/cli/history"
	"github.com/gnosislabs/gnosis-api/cmd/cli/learn"
	"github.com/gnosislabs/gnosis-api/cmd/cli/root"
)

func main() {
	rootCmd := root.GetRoot()

	auth.InitAuth(rootCmd)
	learn.InitLearn(rootCmd)
	history.InitHistory(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
