package main

import (
	"fmt"
	"os"
	"path/filepath"

	"resume-optimizer/internal/config"
	"resume-optimizer/pkg/session"

	"github.com/spf13/cobra"
)

type evaluateOptions struct {
	role         string
	description  string
	organization string
	note         string
	prompt       string
	noChat       bool
}

func newEvaluateCmd(cfg *config.Config, root *rootOptions) *cobra.Command {
	opts := &evaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate <resume-file>",
		Short: "Submit a resume for scoring, wait for the result, then chat about it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := readSubmission(args[0], opts)
			if err != nil {
				return err
			}

			r := newRenderer(cmd.OutOrStdout())
			orch, log := newSession(cfg, root, r)
			defer log.Sync()

			ctx := cmd.Context()
			if err := orch.SubmitEvaluation(ctx, sub); err != nil {
				return err
			}
			if opts.noChat {
				return orch.WaitIdle(ctx)
			}
			return newShell(orch, r, cmd.InOrStdin(), limitsFrom(cfg.Client)).run(ctx)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.role, "role", "", "target role title")
	f.StringVar(&opts.description, "description", "", "target role description")
	f.StringVar(&opts.organization, "org", "", "organization and other information")
	f.StringVar(&opts.note, "note", "", "special requests for the evaluation")
	f.StringVar(&opts.prompt, "prompt", "", "text shown as your message in the conversation")
	f.BoolVar(&opts.noChat, "no-chat", false, "exit once the evaluation finishes")
	return cmd
}

func readSubmission(path string, opts *evaluateOptions) (session.Submission, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return session.Submission{}, fmt.Errorf("read resume: %w", err)
	}
	return session.Submission{
		FileName:         filepath.Base(path),
		Document:         data,
		RoleTitle:        opts.role,
		RoleDescription:  opts.description,
		OrganizationInfo: opts.organization,
		UserNote:         opts.note,
		Prompt:           opts.prompt,
	}, nil
}
