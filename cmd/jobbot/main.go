package main

import (
	"github.com/go-go-golems/jobbot/cmd/jobbot/cmds"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd, err := cmds.NewRootCommand()
	cobra.CheckErr(err)
	err = rootCmd.Execute()
	cobra.CheckErr(err)
}
