package cli

import (
	"github.com/vhostsieve/vhostsieve/internal/pipeline"
	"github.com/vhostsieve/vhostsieve/internal/utils/logger"
)

// Runner wires parsed flags into a pipeline.Config and drives the run,
// grounded on the teacher's Runner.Initialize/.Run split
// (internal/cli/runner.go in the reference tree) stripped of the
// bypass-module/resend-token machinery that has no place in this domain.
type Runner struct {
	opts *Options
}

func NewRunner() *Runner {
	return &Runner{}
}

func (r *Runner) Initialize() error {
	opts, err := parseFlags()
	if err != nil {
		return err
	}
	r.opts = opts

	if opts.Verbose {
		logger.DefaultLogger.EnableVerbose()
	}
	if opts.Debug {
		logger.DefaultLogger.EnableDebug()
	}

	return nil
}

func (r *Runner) Run() error {
	cfg := pipeline.Config{
		DomainsFile:        r.opts.DomainsFile,
		OutputFile:         r.opts.OutputFile,
		LogsDir:            r.opts.LogsDir,
		Ports:              r.opts.Ports,
		Threads:            r.opts.Threads,
		TCPTimeout:         r.opts.TCPTimeoutDuration(),
		HTTPTimeout:        r.opts.HTTPTimeoutDuration(),
		MaxDomains:         r.opts.MaxDomains,
		MaxIPs:             r.opts.MaxIPs,
		MaxVhostCandidates: r.opts.MaxVhostCandidates,
		UserAgent:          r.opts.UserAgent,
		EnableSNI:          r.opts.EnableSNI,
		ErrorCacheFile:     r.opts.ErrorCacheFile,
	}
	return pipeline.Run(cfg)
}
