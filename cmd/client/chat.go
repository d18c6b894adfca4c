package main

import (
	"resume-optimizer/internal/config"

	"github.com/spf13/cobra"
)

func newChatCmd(cfg *config.Config, root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start a conversation without an evaluated resume",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := newRenderer(cmd.OutOrStdout())
			orch, log := newSession(cfg, root, r)
			defer log.Sync()

			return newShell(orch, r, cmd.InOrStdin(), limitsFrom(cfg.Client)).run(cmd.Context())
		},
	}
}
