package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xuperchain/xstake/kernel/engines/xuperos/xstake"
)

var (
	buildVersion = ""
	commitHash   = ""
	buildDate    = ""
)

type versionCmd struct {
	BaseCmd
}

func GetVersionCmd() *versionCmd {
	versionCmdIns := new(versionCmd)

	versionCmdIns.cmd = &cobra.Command{
		Use:     "version",
		Short:   "View process version information.",
		Example: "xstake version",
		Run: func(cmd *cobra.Command, args []string) {
			Version()
		},
	}

	return versionCmdIns
}

func Version() {
	fmt.Fprintf(output, "%s-%s %s (%s %s)\n", buildVersion, commitHash, buildDate,
		xstake.ContractName, xstake.ContractVersion)
}
