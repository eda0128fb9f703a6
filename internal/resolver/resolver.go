// Package resolver implements Stage 1 — DomainsResolver: concurrent A-record
// resolution of the input domain corpus into resolvable (public IPs) and
// non-resolvable (vhost candidate) subsets, per SPEC_FULL.md §4.4.
//
// DNS queries are issued with github.com/miekg/dns rather than
// net.LookupIPAddr, grounded on the markdingo-trustydns example repo's use of
// dns.Msg/dns.Client for A-record queries — the teacher itself has no
// first-class DNS client (its recon service leans on net.Resolver), so this
// stage is the one place the expansion reaches past the teacher into the
// rest of the pack per SPEC_FULL.md's DOMAIN STACK.
package resolver

import (
	"bufio"
	"os"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/vhostsieve/vhostsieve/internal/model"
	"github.com/vhostsieve/vhostsieve/internal/netutil"
	"github.com/vhostsieve/vhostsieve/internal/progress"
	"github.com/vhostsieve/vhostsieve/internal/utils/logger"
	"github.com/vhostsieve/vhostsieve/internal/workerpool"
)

// defaultServers is tried in order for every query; the first to answer
// with a success response code wins, and an error or any other response
// code (NXDOMAIN included) moves on to the next server. Grounded on the round-robin resolver list in the teacher's
// recon.NewReconService.
var defaultServers = []string{
	"8.8.8.8:53",
	"1.1.1.1:53",
	"9.9.9.9:53",
}

// Resolver runs Stage 1.
type Resolver struct {
	client    *dns.Client
	servers   []string
	threads   int
	maxDomain int
	tracker   *progress.Tracker
}

// Options configures a Resolver.
type Options struct {
	Timeout    time.Duration
	Threads    int
	MaxDomains int // <=0 means no cap
}

// New builds a Resolver ready to run Stage 1.
func New(opts Options) *Resolver {
	return &Resolver{
		client:    &dns.Client{Timeout: opts.Timeout},
		servers:   defaultServers,
		threads:   opts.Threads,
		maxDomain: opts.MaxDomains,
		tracker:   progress.New("resolve"),
	}
}

// ReadDomainsFile reads, trims, drops empty lines from, and deduplicates the
// given domain list file.
func ReadDomainsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	seen := make(map[string]struct{})
	var domains []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		domains = append(domains, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return domains, nil
}

// Run resolves every domain in domains, concurrently, returning one
// model.ResolvedDomain per input (after the optional max-domains sample).
func Run(r *Resolver, domains []string) []model.ResolvedDomain {
	job := workerpool.Job[string, model.ResolvedDomain]{
		GetArgs: func() []string {
			return netutil.SampleWithoutReplacement(domains, r.maxDomain)
		},
		ShowStartInfo: func(args []string) {
			logger.Info().Msgf("Resolving %d domains using %d threads", len(args), r.threads)
		},
		Run: func(_ int, domain string) (model.ResolvedDomain, bool) {
			return model.ResolvedDomain{Domain: domain, IPs: r.resolveA(domain)}, true
		},
	}
	return workerpool.RunJob(job, r.threads, r.tracker)
}

// resolveA queries the A record for domain, returning the public IPv4
// addresses among the answers. DNS failures of any kind (NXDOMAIN, SERVFAIL,
// timeout) are suppressed and yield an empty slice, per SPEC_FULL.md §4.4.
func (r *Resolver) resolveA(domain string) []string {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), dns.TypeA)
	msg.RecursionDesired = true

	var answer *dns.Msg
	for _, server := range r.servers {
		resp, _, err := r.client.Exchange(msg, server)
		if err != nil || resp == nil || resp.Rcode != dns.RcodeSuccess {
			continue
		}
		answer = resp
		break
	}
	if answer == nil {
		return nil
	}

	var ips []string
	for _, rr := range answer.Answer {
		a, ok := rr.(*dns.A)
		if !ok {
			continue
		}
		if netutil.IsPublicIPv4(a.A) {
			ips = append(ips, a.A.String())
		}
	}
	return ips
}

// Validate checks the Stage 1 success condition: at least one resolved
// entry and at least one candidate entry.
func Validate(results []model.ResolvedDomain) bool {
	var haveResolved, haveCandidate bool
	for _, r := range results {
		if r.IsCandidate() {
			haveCandidate = true
		} else {
			haveResolved = true
		}
	}
	return haveResolved && haveCandidate
}
