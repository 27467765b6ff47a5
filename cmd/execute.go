package cmd

import (
	"github.com/caesium-cloud/gqlambda/cmd/invoke"
	"github.com/caesium-cloud/gqlambda/cmd/serve"
	"github.com/caesium-cloud/gqlambda/cmd/start"
	"github.com/spf13/cobra"
)

var cmds = []*cobra.Command{
	start.Cmd,
	serve.Cmd,
	invoke.Cmd,
}

// Execute builds the command tree and executes commands.
func Execute() error {
	command := &cobra.Command{
		Use:          "gqlambda",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Usage()
		},
	}

	for _, c := range cmds {
		command.AddCommand(c)
	}

	return command.Execute()
}
