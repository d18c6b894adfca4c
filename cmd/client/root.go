package main

import (
	"time"

	"resume-optimizer/internal/config"
	"resume-optimizer/internal/pkg/logger"
	"resume-optimizer/pkg/client"
	"resume-optimizer/pkg/clock"
	"resume-optimizer/pkg/compactor"
	"resume-optimizer/pkg/poller"
	"resume-optimizer/pkg/session"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	apiURL  string
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	cfg := config.Load()
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "resume-client",
		Short:         "Evaluate resumes and chat about the results",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.apiURL, "api", cfg.Client.BaseURL, "base URL of the resume optimization API")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", cfg.Client.RequestTimeout, "per-request timeout")

	root.AddCommand(newEvaluateCmd(cfg, opts))
	root.AddCommand(newChatCmd(cfg, opts))
	return root
}

func scheduleFrom(c config.ClientConfig) poller.Schedule {
	return poller.Schedule{
		InitialDelay:        c.PollInitialDelay,
		Interval:            c.PollInterval,
		BackoffFactor:       c.PollBackoffFactor,
		MaxInterval:         c.PollMaxInterval,
		ProcessingThreshold: c.PollProcessingThreshold,
		FailureThreshold:    c.PollFailureThreshold,
		MaxAttempts:         c.PollMaxAttempts,
		MaxDuration:         c.PollMaxDuration,
	}
}

func limitsFrom(c config.ClientConfig) compactor.Limits {
	return compactor.Limits{
		HistoryBudget:      c.HistoryBudget,
		ContextBudget:      c.ContextBudget,
		DocumentMax:        c.DocumentMax,
		RoleDescriptionMax: c.RoleDescriptionMax,
		OrganizationMax:    c.OrganizationMax,
	}
}

// newSession builds an orchestrator talking to the API. Logs go to a file
// only so they never interleave with the conversation.
func newSession(cfg *config.Config, opts *rootOptions, r *renderer) (*session.Orchestrator, logger.ILogger) {
	log := logger.NewIsolatedLogger(cfg.Client.LogFilePath)
	backend := client.New(opts.apiURL, opts.timeout)

	orch := session.New(backend, clock.Real(), session.Config{
		Schedule: scheduleFrom(cfg.Client),
		Limits:   limitsFrom(cfg.Client),
		Notify:   r.render,
	}, log)
	return orch, log
}
