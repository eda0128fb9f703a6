package vhost

import (
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/vhostsieve/vhostsieve/internal/model"
)

func TestBuildJobsPairsEveryServiceWithCandidates(t *testing.T) {
	scanned := []model.ScannedIP{
		{IP: "1.1.1.1", Services: []model.Service{{Port: 80, Scheme: model.SchemeHTTP}, {Port: 443, Scheme: model.SchemeHTTPS}}},
		{IP: "2.2.2.2", Services: []model.Service{{Port: 80, Scheme: model.SchemeHTTP}}},
	}
	candidates := []string{"a.example.com", "b.example.com"}

	jobs := BuildJobs(scanned, candidates, -1)
	require.Len(t, jobs, 3)

	for _, j := range jobs {
		assert.ElementsMatch(t, candidates, j.Candidates)
	}
}

func TestBuildJobsEmptyScanned(t *testing.T) {
	jobs := BuildJobs(nil, []string{"a.example.com"}, -1)
	assert.Empty(t, jobs)
}

// startVhostServer serves one fixed "default" response for every host not in
// distinct and a distinguishable response for every name in distinct, keyed
// by the Host header fasthttp exposes via ctx.Host().
func startVhostServer(t *testing.T, distinct map[string]int) (ip string, port uint16, closeFn func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		_ = fasthttp.Serve(ln, func(ctx *fasthttp.RequestCtx) {
			host := string(ctx.Host())
			if status, ok := distinct[host]; ok {
				ctx.SetStatusCode(status)
				ctx.SetBodyString(fmt.Sprintf("special content for %s", host))
				return
			}
			ctx.SetStatusCode(200)
			ctx.SetBodyString("default vhost response body, nothing to see here")
		})
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return "127.0.0.1", uint16(addr.Port), func() { _ = ln.Close() }
}

func TestDiscriminateFindsDistinctVhost(t *testing.T) {
	ip, port, closeFn := startVhostServer(t, map[string]int{
		"internal.example.com": 403,
	})
	defer closeFn()

	f := New(Options{
		Threads:     1,
		HTTPTimeout: 2 * time.Second,
		UserAgent:   "test-agent",
	}, nil)

	job := Job{
		IP:         ip,
		Service:    model.Service{Port: port, Scheme: model.SchemeHTTP},
		Candidates: []string{"internal.example.com", "other.example.com"},
	}

	finding := f.discriminate(0, job)

	assert.False(t, finding.Stopped)
	require.Len(t, finding.Vhosts, 1)
	assert.Equal(t, "internal.example.com", finding.Vhosts[0].Name)
	assert.Equal(t, 403, finding.Vhosts[0].Status)
}

func TestDiscriminateStopsWhenServiceUnreachable(t *testing.T) {
	f := New(Options{
		Threads:     1,
		HTTPTimeout: 200 * time.Millisecond,
		UserAgent:   "test-agent",
	}, nil)

	job := Job{
		IP:         "203.0.113.1", // TEST-NET-3, reserved and unroutable
		Service:    model.Service{Port: 65001, Scheme: model.SchemeHTTP},
		Candidates: []string{"a.example.com"},
	}

	finding := f.discriminate(0, job)

	assert.True(t, finding.Stopped)
	assert.Empty(t, finding.Vhosts)
}

func TestDiscriminateNoFindingsWhenAllVhostsLookDefault(t *testing.T) {
	ip, port, closeFn := startVhostServer(t, nil)
	defer closeFn()

	f := New(Options{
		Threads:     1,
		HTTPTimeout: 2 * time.Second,
		UserAgent:   "test-agent",
	}, nil)

	job := Job{
		IP:         ip,
		Service:    model.Service{Port: port, Scheme: model.SchemeHTTP},
		Candidates: []string{"a.example.com", "b.example.com", "c.example.com"},
	}

	finding := f.discriminate(0, job)

	assert.False(t, finding.Stopped)
	assert.Empty(t, finding.Vhosts)
}
