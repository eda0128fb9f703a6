package httpresponse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "both empty", a: "", b: "", want: 1.0},
		{name: "identical", a: "hello world", b: "hello world", want: 1.0},
		{name: "completely different", a: "aaaa", b: "bbbb", want: 0.0},
		{name: "one empty", a: "abc", b: "", want: 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Ratio(tt.a, tt.b))
		})
	}
}

func TestIsSimilar(t *testing.T) {
	tests := []struct {
		name string
		a, b Response
		want bool
	}{
		{
			name: "identical status and body",
			a:    New(200, "", "default vhost body content here", nil),
			b:    New(200, "", "default vhost body content here", nil),
			want: true,
		},
		{
			name: "different status",
			a:    New(200, "", "same body", nil),
			b:    New(404, "", "same body", nil),
			want: false,
		},
		{
			name: "different location key",
			a:    New(302, "https://example.com/login", "", nil),
			b:    New(302, "https://example.com/home", "", nil),
			want: false,
		},
		{
			name: "same location key, query ignored",
			a:    New(302, "https://example.com/login?session=abc", "", nil),
			b:    New(302, "https://example.com/login?session=xyz", "", nil),
			want: true,
		},
		{
			name: "body drifted below threshold",
			a:    New(200, "", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", nil),
			b:    New(200, "", "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", nil),
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSimilar(tt.a, tt.b))
		})
	}
}

func TestLocationKeyEmptyHeaderFallsBackToBody(t *testing.T) {
	r := New(200, "", "the quick brown fox", nil)
	assert.Empty(t, r.LocationKey)
	assert.Equal(t, "the quick brown fox", r.BodyPrefix)
}

func TestLocationKeyDropsQueryAndFragment(t *testing.T) {
	a := New(302, "https://example.com/path?foo=bar#section", "", nil)
	b := New(302, "https://example.com/path", "", nil)
	assert.Equal(t, a.LocationKey, b.LocationKey)
}
