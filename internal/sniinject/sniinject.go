// Package sniinject implements the per-worker name-injection layer described
// in SPEC_FULL.md §4.1: TLS vhost probing needs a hostname in the SNI
// ClientHello while the TCP socket actually reaches a chosen IP. fasthttp
// derives SNI from the request URI's host automatically, so the dialer only
// needs to redirect the connection's real destination and otherwise behave
// like a normal TCPDialer.
//
// Grounded on the teacher's fasthttp.TCPDialer + custom net.Resolver.Dial
// pattern (internal/engine/recon/recon.go, internal/engine/rawhttp/dialer's
// reference shared dialer), adapted per SPEC_FULL.md §9's redesign note: a
// mutex-guarded table keyed by worker identity, not a monkeypatch of a
// process-global resolver, and worker identity threaded via an explicit int
// rather than goroutine introspection.
package sniinject

import (
	"fmt"
	"net"
	"sync"

	"github.com/valyala/fasthttp"
)

// entry is one worker's current override: any of names resolves to ip.
type entry struct {
	names map[string]struct{}
	ip    string
}

// Table is the mutex-guarded, worker-keyed override table. Build it with
// New: the zero value has a nil map and SetNames on it panics.
type Table struct {
	mu      sync.Mutex
	byWorker map[int]entry
	dialer  *fasthttp.TCPDialer
	once    sync.Once
}

// New returns an empty Table. Its shared TCPDialer is built on the first
// call to Register or Dialer.
func New() *Table {
	return &Table{byWorker: make(map[int]entry)}
}

// Register builds the table's shared TCPDialer. Idempotent: calls after the
// first do nothing.
func (t *Table) Register() {
	t.once.Do(func() {
		t.dialer = &fasthttp.TCPDialer{
			Concurrency: 2048,
		}
	})
}

// SetNames overwrites workerID's override: hostnames in names resolve to ip
// for the duration of that worker's next outbound connections.
func (t *Table) SetNames(workerID int, names []string, ip string) {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byWorker[workerID] = entry{names: set, ip: ip}
}

// Clear removes workerID's override, restoring fall-through to the system
// resolver for subsequent connections from that worker.
func (t *Table) Clear(workerID int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.byWorker, workerID)
}

// lookup returns the overriding IP for (workerID, host), if any.
func (t *Table) lookup(workerID int, host string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.byWorker[workerID]
	if !ok {
		return "", false
	}
	if _, ok := e.names[host]; !ok {
		return "", false
	}
	return e.ip, true
}

// Dialer returns a fasthttp.DialFunc bound to workerID: any connection whose
// target host is currently overridden for that worker is redirected to the
// override IP over plain IPv4/TCP; everything else is dialed unchanged
// through the same shared TCPDialer, which uses the system resolver.
func (t *Table) Dialer(workerID int) fasthttp.DialFunc {
	t.Register()
	return func(addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, fmt.Errorf("sniinject: invalid addr %q: %w", addr, err)
		}
		if ip, ok := t.lookup(workerID, host); ok {
			return t.dialer.Dial(net.JoinHostPort(ip, port))
		}
		return t.dialer.Dial(addr)
	}
}
