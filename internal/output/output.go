// Package output writes the pipeline's terminal report: the flat-line
// output file of SPEC_FULL.md §6. One line per (ip, service) pair that
// produced at least one finding.
package output

import (
	"fmt"
	"os"

	"github.com/vhostsieve/vhostsieve/internal/model"
)

// Write overwrites path with one line per finding that has results:
// "<ip> <port> <scheme> <stopped> <vhost1> <vhost2> ..." where <stopped> is
// the literal "True"/"False" and each <vhostK> is itself "<name> <status>".
func Write(path string, findings []model.VhostFinding) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	lines := 0
	for _, finding := range findings {
		if !finding.HasFindings() {
			continue
		}
		stopped := "False"
		if finding.Stopped {
			stopped = "True"
		}
		if _, err := fmt.Fprintf(f, "%s %d %s %s", finding.IP, finding.Service.Port, finding.Service.Scheme, stopped); err != nil {
			return lines, err
		}
		for _, v := range finding.Vhosts {
			if _, err := fmt.Fprintf(f, " %s %d", v.Name, v.Status); err != nil {
				return lines, err
			}
		}
		if _, err := fmt.Fprintln(f); err != nil {
			return lines, err
		}
		lines++
	}
	return lines, nil
}
