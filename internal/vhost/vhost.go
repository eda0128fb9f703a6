// Package vhost implements Stage 3 — VhostsFinder, the core of the core:
// per-service vhost discrimination via reference-response calibration and an
// adaptive early-termination state machine, per SPEC_FULL.md §4.6.
//
// Grounded on original_source/vhosts-sieve.py's VhostsFinder/HttpResponse/
// _find_service_vhosts for the exact control flow (error_streak/valid_streak,
// the ">8" early-termination threshold, the R1/R2 baseline protocol), and on
// the teacher's fasthttp.Client construction (internal/engine/rawhttp/
// client.go) for the one persistent per-service HTTP client session.
package vhost

import (
	"crypto/tls"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/vhostsieve/vhostsieve/internal/httpresponse"
	"github.com/vhostsieve/vhostsieve/internal/model"
	"github.com/vhostsieve/vhostsieve/internal/netutil"
	"github.com/vhostsieve/vhostsieve/internal/progress"
	"github.com/vhostsieve/vhostsieve/internal/sniinject"
	"github.com/vhostsieve/vhostsieve/internal/utils/logger"
	"github.com/vhostsieve/vhostsieve/internal/workerpool"
)

// streakLimit is the number of consecutive errors or consecutive valid
// vhosts that, once strictly exceeded, stops the discrimination loop for a
// service (SPEC_FULL.md §4.6.1, §8 invariant 7).
const streakLimit = 8

// forensic headers sent on every candidate probe to coax trust-based gating
// into revealing internal vhosts (SPEC_FULL.md §4.6.1).
var forensicHeaders = map[string]string{
	"X-Forwarded-For":  "127.0.0.1",
	"X-Originating-IP": "[127.0.0.1]",
	"X-Remote-IP":      "127.0.0.1",
	"X-Remote-Addr":    "127.0.0.1",
}

// Job is one (ip, service, candidates) unit of work for the finder pool.
type Job struct {
	IP         string
	Service    model.Service
	Candidates []string
}

// Options configures a Finder.
type Options struct {
	Threads     int
	HTTPTimeout time.Duration
	UserAgent   string
	EnableSNI   bool
	MaxVhosts   int // max-vhost-candidates, <=0 means no cap
	LogDir      string // optional, empty disables per-finding logging
}

// Finder runs Stage 3.
type Finder struct {
	opts    Options
	sni     *sniinject.Table
	tracker *progress.Tracker
}

// New builds a Finder.
func New(opts Options, sni *sniinject.Table) *Finder {
	return &Finder{opts: opts, sni: sni, tracker: progress.New("vhost")}
}

// BuildJobs pairs every scanned IP's services with the (optionally
// down-sampled) candidate list, one Job per service.
func BuildJobs(scanned []model.ScannedIP, candidates []string, maxCandidates int) []Job {
	sample := netutil.SampleWithoutReplacement(candidates, maxCandidates)
	var jobs []Job
	for _, ip := range scanned {
		for _, svc := range ip.Services {
			jobs = append(jobs, Job{IP: ip.IP, Service: svc, Candidates: sample})
		}
	}
	return jobs
}

// Run discriminates vhosts for every job, concurrently, keeping only
// findings with at least one positive result.
func Run(f *Finder, jobs []Job) []model.VhostFinding {
	job := workerpool.Job[Job, model.VhostFinding]{
		GetArgs: func() []Job { return jobs },
		ShowStartInfo: func(args []Job) {
			logger.Info().Msgf("Discriminating vhosts across %d services using %d threads",
				len(args), f.opts.Threads)
		},
		Run: func(workerID int, j Job) (model.VhostFinding, bool) {
			finding := f.discriminate(workerID, j)
			return finding, finding.HasFindings()
		},
	}
	return workerpool.RunJob(job, f.opts.Threads, f.tracker)
}

// discriminate is the per-service vhost discrimination procedure of
// SPEC_FULL.md §4.6.1.
func (f *Finder) discriminate(workerID int, j Job) model.VhostFinding {
	finding := model.VhostFinding{IP: j.IP, Service: j.Service}

	r1 := netutil.RandomVhostLabel()
	r2 := netutil.RandomVhostLabel()

	if f.opts.EnableSNI {
		names := append(append([]string{}, j.Candidates...), r1, r2)
		f.sni.SetNames(workerID, names, j.IP)
		defer f.sni.Clear(workerID)
	}

	client := f.newServiceClient(workerID)
	defer client.CloseIdleConnections()

	reference, ok := f.probe(client, j.IP, j.Service, r1)
	if !ok {
		finding.Stopped = true
		return finding
	}

	sanity, ok := f.probe(client, j.IP, j.Service, r2)
	if !ok || !httpresponse.IsSimilar(reference, sanity) {
		finding.Stopped = true
		return finding
	}

	errorStreak, validStreak := 0, 0
	for _, candidate := range netutil.SampleWithoutReplacement(j.Candidates, -1) {
		resp, ok := f.probe(client, j.IP, j.Service, candidate)
		if !ok {
			errorStreak++
			validStreak = 0
		} else {
			errorStreak = 0
			similar := httpresponse.IsSimilar(reference, resp)
			if similar {
				validStreak = 0
			} else {
				validStreak++
				finding.Vhosts = append(finding.Vhosts, model.Vhost{Name: candidate, Status: resp.Status})
				f.logFinding(j, candidate, resp)
			}
		}

		if errorStreak > streakLimit || validStreak > streakLimit {
			finding.Stopped = true
			break
		}
	}

	return finding
}

// newServiceClient builds the one persistent HTTP client session this
// worker holds for the duration of a single service's discrimination run
// (SPEC_FULL.md §5 "Per-worker resources").
func (f *Finder) newServiceClient(workerID int) *fasthttp.Client {
	client := &fasthttp.Client{
		NoDefaultUserAgentHeader:      true,
		DisableHeaderNamesNormalizing: true,
		DisablePathNormalizing:        true,
		MaxConnsPerHost:               4,
		MaxIdemponentCallAttempts:     2,
		TLSConfig: &tls.Config{
			InsecureSkipVerify: true,
		},
	}
	if f.opts.EnableSNI {
		client.Dial = f.sni.Dialer(workerID)
	}
	return client
}

// probe issues the single GET used throughout Stage 3: method GET, path "/",
// no redirects followed, forensic headers attached, Host-header-or-SNI
// addressing per EnableSNI (SPEC_FULL.md §4.6.1 "Request construction").
func (f *Finder) probe(client *fasthttp.Client, ip string, svc model.Service, name string) (httpresponse.Response, bool) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	target := ip
	if f.opts.EnableSNI {
		target = name
	}
	req.SetRequestURI(fmt.Sprintf("%s://%s:%d/", svc.Scheme, target, svc.Port))
	req.Header.SetMethod("GET")
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	if !f.opts.EnableSNI {
		req.Header.SetHost(name)
		req.UseHostHeader = true
	}
	for k, v := range forensicHeaders {
		req.Header.Set(k, v)
	}

	if err := client.DoTimeout(req, resp, f.opts.HTTPTimeout); err != nil {
		return httpresponse.Response{}, false
	}

	headers := make(map[string]string)
	resp.Header.VisitAll(func(k, v []byte) {
		headers[string(k)] = string(v)
	})
	location := string(resp.Header.Peek("Location"))
	body := string(resp.Body())

	return httpresponse.New(resp.StatusCode(), location, body, headers), true
}

func (f *Finder) logFinding(j Job, candidate string, resp httpresponse.Response) {
	if f.opts.LogDir == "" {
		return
	}
	if err := writeFindingLog(f.opts.LogDir, j.IP, j.Service, candidate, resp); err != nil {
		logger.Error().Msgf("Failed to write log for %s %s: %v", j.IP, candidate, err)
	}
}
