package main

import (
	"fmt"
	"os"

	"github.com/xuzuoyang/gitbro/internal/cli"
	broerrors "github.com/xuzuoyang/gitbro/internal/errors"
	"github.com/xuzuoyang/gitbro/internal/output"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := cli.NewRootCmd(version, commit, date)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, output.ColorRed(broerrors.Describe(err)))
		os.Exit(1)
	}
}
