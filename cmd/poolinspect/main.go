package main

import (
	"os"

	"cosmossdk.io/log"

	"github.com/openalpha/stake-pool/cmd/poolinspect/cmd"
)

func main() {
	rootCmd := cmd.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		log.NewLogger(os.Stderr).Error("poolinspect failed", "err", err)
		os.Exit(1)
	}
}
