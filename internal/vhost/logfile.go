package vhost

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/vhostsieve/vhostsieve/internal/httpresponse"
	"github.com/vhostsieve/vhostsieve/internal/model"
)

// writeFindingLog writes the per-finding log file described in
// SPEC_FULL.md §6: filename "<ip>_<port>_<scheme>_<candidate>_<status>",
// each response header on its own line as "Name: value", a blank line, then
// the full response body.
func writeFindingLog(dir, ip string, svc model.Service, candidate string, resp httpresponse.Response) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	name := fmt.Sprintf("%s_%d_%s_%s_%d", ip, svc.Port, svc.Scheme, candidate, resp.Status)
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	keys := make([]string, 0, len(resp.Headers))
	for k := range resp.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, err := fmt.Fprintf(f, "%s: %s\n", k, resp.Headers[k]); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprint(f, "\n"); err != nil {
		return err
	}
	_, err = fmt.Fprint(f, resp.BodyFull)
	return err
}
