package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatHMS(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{d: 0, want: "0:00:00"},
		{d: 5 * time.Second, want: "0:00:05"},
		{d: 90 * time.Second, want: "0:01:30"},
		{d: 3661 * time.Second, want: "1:01:01"},
		{d: 2*time.Hour + 5*time.Minute, want: "2:05:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatHMS(tt.d))
	}
}

func TestDoneTracksCompletionCount(t *testing.T) {
	tr := New("test-stage")
	tr.Reset(10)
	for i := 0; i < 5; i++ {
		tr.Done()
	}
	tr.mu.Lock()
	done := tr.done
	total := tr.total
	tr.mu.Unlock()
	assert.Equal(t, 5, done)
	assert.Equal(t, 10, total)
}

func TestResetClearsPriorState(t *testing.T) {
	tr := New("test-stage")
	tr.Reset(5)
	tr.Done()
	tr.Reset(20)
	tr.mu.Lock()
	done := tr.done
	total := tr.total
	tr.mu.Unlock()
	assert.Equal(t, 0, done)
	assert.Equal(t, 20, total)
}
