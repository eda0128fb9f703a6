package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Options represents the parsed and validated command-line options, per
// SPEC_FULL.md §6. Grounded on the teacher's CliOptions struct and
// setDefaults/validate split (internal/cli/options.go in the reference
// tree), re-keyed to this spec's flags.
type Options struct {
	DomainsFile string
	OutputFile  string
	LogsDir     string

	PortsStr string
	Ports    []uint16

	Threads int

	TimeoutTCP  float64
	TimeoutHTTP float64

	MaxDomains         int
	MaxIPs             int
	MaxVhostCandidates int

	UserAgent string
	EnableSNI bool

	ErrorCacheFile string

	Verbose bool
	Debug   bool
}

func (o *Options) setDefaults() {
	if o.PortsStr == "" {
		o.PortsStr = defaultPortsStr
	}
	if o.Threads <= 0 {
		o.Threads = 16
	}
	if o.TimeoutTCP <= 0 {
		o.TimeoutTCP = 3.0
	}
	if o.TimeoutHTTP <= 0 {
		o.TimeoutHTTP = 5.0
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
}

func (o *Options) validate() error {
	if o.DomainsFile == "" {
		return fmt.Errorf("-d/--domains-file is required")
	}
	if o.OutputFile == "" {
		return fmt.Errorf("-o/--output-file is required")
	}
	if err := o.parsePorts(); err != nil {
		return err
	}
	if o.Threads < 1 {
		return fmt.Errorf("-t/--threads-number must be positive")
	}
	if o.TimeoutTCP <= 0 {
		return fmt.Errorf("--timeout-tcp must be positive")
	}
	if o.TimeoutHTTP <= 0 {
		return fmt.Errorf("--timeout-http must be positive")
	}
	return nil
}

// parsePorts turns the comma-separated port string into a sorted,
// deduplicated []uint16, per SPEC_FULL.md §8 scenario 5.
func (o *Options) parsePorts() error {
	parts := strings.Split(o.PortsStr, ",")
	seen := make(map[uint16]struct{})
	var ports []uint16
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return fmt.Errorf("-p/--ports-to-scan: invalid port %q: %w", p, err)
		}
		port := uint16(n)
		if _, ok := seen[port]; ok {
			continue
		}
		seen[port] = struct{}{}
		ports = append(ports, port)
	}
	if len(ports) == 0 {
		return fmt.Errorf("-p/--ports-to-scan: at least one port is required")
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i] < ports[j] })
	o.Ports = ports
	return nil
}

// TCPTimeoutDuration converts the float-seconds flag to a time.Duration.
func (o *Options) TCPTimeoutDuration() time.Duration {
	return time.Duration(o.TimeoutTCP * float64(time.Second))
}

// HTTPTimeoutDuration converts the float-seconds flag to a time.Duration.
func (o *Options) HTTPTimeoutDuration() time.Duration {
	return time.Duration(o.TimeoutHTTP * float64(time.Second))
}
