package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/xuperchain/xstake/cmd/xstake/cmd"
)

func main() {
	rootCmd, err := NewServiceCommand()
	if err != nil {
		log.Fatalf("start service failed.err:%v", err)
	}

	if err = rootCmd.Execute(); err != nil {
		log.Fatalf("start service failed.err:%v", err)
	}
}

func NewServiceCommand() (*cobra.Command, error) {
	rootCmd := &cobra.Command{
		Use:           "xstake <command> [arguments]",
		Short:         "Xstake is a deadman-switch token staking ledger.",
		Long:          "Xstake is a deadman-switch token staking ledger.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example:       "xstake serve --conf /home/rd/xstake/conf/env.yaml",
	}

	// cmd version
	rootCmd.AddCommand(cmd.GetVersionCmd().GetCmd())
	// cmd init
	rootCmd.AddCommand(cmd.GetInitCmd().GetCmd())
	// cmd execute
	rootCmd.AddCommand(cmd.GetExecuteCmd().GetCmd())
	// cmd query
	rootCmd.AddCommand(cmd.GetQueryCmd().GetCmd())
	// cmd serve
	rootCmd.AddCommand(cmd.GetServeCmd().GetCmd())
	return rootCmd, nil
}
