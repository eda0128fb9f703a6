package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vhostsieve/vhostsieve/internal/model"
)

func TestReadDomainsFileTrimsDedupesAndDropsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "domains.txt")
	content := "example.com\n  example.org  \n\nexample.com\nexample.net\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	domains, err := ReadDomainsFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com", "example.org", "example.net"}, domains)
}

func TestReadDomainsFileMissing(t *testing.T) {
	_, err := ReadDomainsFile("/nonexistent/path/domains.txt")
	assert.Error(t, err)
}

func TestValidateRequiresBothSplits(t *testing.T) {
	tests := []struct {
		name    string
		results []model.ResolvedDomain
		want    bool
	}{
		{
			name: "both present",
			results: []model.ResolvedDomain{
				{Domain: "resolved.example.com", IPs: []string{"1.1.1.1"}},
				{Domain: "candidate.example.com"},
			},
			want: true,
		},
		{
			name: "only resolved",
			results: []model.ResolvedDomain{
				{Domain: "resolved.example.com", IPs: []string{"1.1.1.1"}},
			},
			want: false,
		},
		{
			name: "only candidates",
			results: []model.ResolvedDomain{
				{Domain: "candidate.example.com"},
			},
			want: false,
		},
		{name: "empty", results: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.results))
		})
	}
}
