package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// multiFlag lets one logical option register under a short and a long name,
// grounded on the teacher's comma-separated name slice pattern
// (internal/cli/flags.go in the reference tree) generalized over string,
// int, float64 and bool-valued flags.
type multiFlag struct {
	name   string
	usage  string
	value  interface{}
	defVal interface{}
}

func parseFlags() (*Options, error) {
	opts := &Options{}

	flags := []multiFlag{
		{name: "d,domains-file", usage: "Input domains file, one per line (required)", value: &opts.DomainsFile},
		{name: "o,output-file", usage: "Output results file, overwritten (required)", value: &opts.OutputFile},
		{name: "l,logs-dir", usage: "Directory to dump full responses for positive findings", value: &opts.LogsDir},
		{name: "p,ports-to-scan", usage: "Comma-separated ports to scan", value: &opts.PortsStr, defVal: defaultPortsStr},
		{name: "t,threads-number", usage: "Number of concurrent worker threads", value: &opts.Threads, defVal: 16},
		{name: "timeout-tcp", usage: "TCP connect timeout in seconds", value: &opts.TimeoutTCP, defVal: 3.0},
		{name: "timeout-http", usage: "HTTP request timeout in seconds", value: &opts.TimeoutHTTP, defVal: 5.0},
		{name: "max-domains", usage: "Cap on input domains sampled (-1 = no cap)", value: &opts.MaxDomains, defVal: -1},
		{name: "max-ips", usage: "Cap on resolved IPs scanned (-1 = no cap)", value: &opts.MaxIPs, defVal: -1},
		{name: "max-vhost-candidates", usage: "Cap on vhost candidates probed (-1 = no cap)", value: &opts.MaxVhostCandidates, defVal: -1},
		{name: "u,user-agent", usage: "User-Agent header sent with every probe", value: &opts.UserAgent, defVal: defaultUserAgent},
		{name: "enable-sni", usage: "Use TLS SNI + name injection instead of Host-header-only probing", value: &opts.EnableSNI},
		{name: "error-cache-file", usage: "Path to persist the cross-run error budget cache", value: &opts.ErrorCacheFile},
		{name: "v,verbose", usage: "Verbose diagnostic output", value: &opts.Verbose},
		{name: "debug", usage: "Debug diagnostic output", value: &opts.Debug},
	}

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "vhostsieve\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		for _, f := range flags {
			names := strings.Split(f.name, ",")
			if len(names) > 1 {
				fmt.Fprintf(os.Stderr, "  -%s, -%s\n", names[0], names[1])
			} else {
				fmt.Fprintf(os.Stderr, "  -%s\n", names[0])
			}
			if f.defVal != nil {
				fmt.Fprintf(os.Stderr, "        %s (Default: %v)\n", f.usage, f.defVal)
			} else {
				fmt.Fprintf(os.Stderr, "        %s\n", f.usage)
			}
		}
	}

	for _, f := range flags {
		for _, name := range strings.Split(f.name, ",") {
			name = strings.TrimSpace(name)
			switch v := f.value.(type) {
			case *string:
				def, _ := f.defVal.(string)
				flag.StringVar(v, name, def, f.usage)
			case *int:
				def, _ := f.defVal.(int)
				flag.IntVar(v, name, def, f.usage)
			case *float64:
				def, _ := f.defVal.(float64)
				flag.Float64Var(v, name, def, f.usage)
			case *bool:
				def, _ := f.defVal.(bool)
				flag.BoolVar(v, name, def, f.usage)
			}
		}
	}

	flag.Parse()

	opts.setDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

const defaultPortsStr = "80,443,8000,8008,8080,8443"

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/115.0"
