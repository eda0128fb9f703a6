// Package pipeline sequences the three stages, validates non-empty
// progression between them, and writes the terminal report, per
// SPEC_FULL.md §2's "Pipeline driver" component. Grounded on the teacher's
// Scanner.Run orchestration (internal/engine/scanner/scanner.go): run a
// stage, collect/validate its results, report, move to the next.
package pipeline

import (
	"fmt"
	"time"

	"github.com/vhostsieve/vhostsieve/internal/errorbudget"
	"github.com/vhostsieve/vhostsieve/internal/model"
	"github.com/vhostsieve/vhostsieve/internal/output"
	"github.com/vhostsieve/vhostsieve/internal/portscan"
	"github.com/vhostsieve/vhostsieve/internal/resolver"
	"github.com/vhostsieve/vhostsieve/internal/sniinject"
	"github.com/vhostsieve/vhostsieve/internal/utils/logger"
	"github.com/vhostsieve/vhostsieve/internal/vhost"
)

// Config carries every flag the driver and its stages need.
type Config struct {
	DomainsFile         string
	OutputFile          string
	LogsDir             string
	Ports               []uint16
	Threads             int
	TCPTimeout          time.Duration
	HTTPTimeout         time.Duration
	MaxDomains          int
	MaxIPs              int
	MaxVhostCandidates  int
	UserAgent           string
	EnableSNI           bool
	ErrorCacheFile      string
}

// Run executes the full pipeline: Stage 1 -> Stage 2 -> Stage 3 -> report.
// Returns a nil error and zero output on the graceful "pipeline emptiness"
// outcomes described in SPEC_FULL.md §7; a non-nil error only for hard
// failures (I/O, argument-level issues surfaced late).
func Run(cfg Config) error {
	budget := errorbudget.New()
	defer budget.Close()
	if cfg.ErrorCacheFile != "" {
		if loaded, err := errorbudget.Load(cfg.ErrorCacheFile); err == nil {
			budget = loaded
		}
	}

	domains, err := resolver.ReadDomainsFile(cfg.DomainsFile)
	if err != nil {
		return fmt.Errorf("reading domains file: %w", err)
	}

	res := resolver.New(resolver.Options{
		Timeout:    cfg.TCPTimeout,
		Threads:    cfg.Threads,
		MaxDomains: cfg.MaxDomains,
	})
	resolved := resolver.Run(res, domains)
	if !resolver.Validate(resolved) {
		logger.Warning().Msgf("Stage 1 produced no usable split of resolvable/candidate domains; stopping")
		return nil
	}

	candidates := candidateDomains(resolved)
	ips := portscan.UniqueIPs(resolved)

	sni := sniinject.New()
	sni.Register()

	scanner := portscan.New(portscan.Options{
		Ports:       cfg.Ports,
		Threads:     cfg.Threads,
		TCPTimeout:  cfg.TCPTimeout,
		HTTPTimeout: cfg.HTTPTimeout,
		UserAgent:   cfg.UserAgent,
		EnableSNI:   cfg.EnableSNI,
		MaxIPs:      cfg.MaxIPs,
	}, sni)
	scanned := portscan.Run(scanner, ips)
	if len(scanned) == 0 {
		logger.Warning().Msgf("Stage 2 found no live services; stopping")
		return nil
	}

	finder := vhost.New(vhost.Options{
		Threads:     cfg.Threads,
		HTTPTimeout: cfg.HTTPTimeout,
		UserAgent:   cfg.UserAgent,
		EnableSNI:   cfg.EnableSNI,
		MaxVhosts:   cfg.MaxVhostCandidates,
		LogDir:      cfg.LogsDir,
	}, sni)
	jobs := vhost.BuildJobs(scanned, candidates, cfg.MaxVhostCandidates)
	findings := vhost.Run(finder, jobs)

	lines, err := output.Write(cfg.OutputFile, findings)
	if err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	logger.PrintGreenLn("Wrote %d finding(s) to %s", lines, cfg.OutputFile)

	stats := budget.Snapshot()
	logger.Info().Msgf("Error budget: %d errors across %d hosts", stats.TotalErrors, stats.UniqueHosts)

	if cfg.ErrorCacheFile != "" {
		if err := budget.Save(cfg.ErrorCacheFile); err != nil {
			logger.Error().Msgf("Failed to persist error cache: %v", err)
		}
	}

	return nil
}

func candidateDomains(resolved []model.ResolvedDomain) []string {
	var candidates []string
	for _, r := range resolved {
		if r.IsCandidate() {
			candidates = append(candidates, r.Domain)
		}
	}
	return candidates
}
