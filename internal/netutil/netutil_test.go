package netutil

import (
	"net"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPublicIPv4(t *testing.T) {
	tests := []struct {
		name string
		ip   string
		want bool
	}{
		{name: "public", ip: "8.8.8.8", want: true},
		{name: "rfc1918 10/8", ip: "10.0.0.1", want: false},
		{name: "rfc1918 192.168/16", ip: "192.168.1.1", want: false},
		{name: "rfc1918 172.16/12", ip: "172.16.5.4", want: false},
		{name: "loopback", ip: "127.0.0.1", want: false},
		{name: "link-local", ip: "169.254.1.1", want: false},
		{name: "unspecified", ip: "0.0.0.0", want: false},
		{name: "ipv6 rejected", ip: "2001:4860:4860::8888", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ip := net.ParseIP(tt.ip)
			assert.NotNil(t, ip)
			assert.Equal(t, tt.want, IsPublicIPv4(ip))
		})
	}
}

var vhostLabelPattern = regexp.MustCompile(`^[a-z]{8}\.com$`)

func TestRandomVhostLabelShape(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		label := RandomVhostLabel()
		assert.Regexp(t, vhostLabelPattern, label)
		seen[label] = struct{}{}
	}
	assert.Greater(t, len(seen), 90, "labels should be effectively unique across 100 draws")
}

func TestSampleWithoutReplacementSize(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	sample := SampleWithoutReplacement(items, 3)
	assert.Len(t, sample, 3)

	all := SampleWithoutReplacement(items, -1)
	assert.ElementsMatch(t, items, all)

	tooMany := SampleWithoutReplacement(items, 1000)
	assert.ElementsMatch(t, items, tooMany)
}

func TestSampleWithoutReplacementNoDuplicates(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	sample := SampleWithoutReplacement(items, 3)
	seen := make(map[string]struct{})
	for _, s := range sample {
		_, dup := seen[s]
		assert.False(t, dup)
		seen[s] = struct{}{}
	}
}
