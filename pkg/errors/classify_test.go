package errors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClassifier(rand float64) *Classifier {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return NewClassifierWithSource(
		func() time.Time { return now },
		func() float64 { return rand },
	)
}

func TestClassify_FatalStatuses(t *testing.T) {
	c := testClassifier(0)

	for _, status := range []int{400, 401, 403} {
		cls := c.Classify(status, "", "")
		assert.Equal(t, ClassFatal, cls.Class, "status %d", status)
		require.NotNil(t, cls.Err)
		assert.Equal(t, status, cls.Err.StatusCode())
		assert.Equal(t, CategoryAuth, cls.Err.Category())
		assert.Zero(t, cls.Delay)
	}
}

func TestClassify_ServerBusyWithHint(t *testing.T) {
	t.Run("seconds form", func(t *testing.T) {
		c := testClassifier(0)
		cls := c.Classify(429, "5", "")
		assert.Equal(t, ClassServerBusy, cls.Class)
		// hint 5s + jitter floor 0.5s.
		assert.Equal(t, 5500*time.Millisecond, cls.Delay)
		assert.Equal(t, CodeServerBusy, cls.Err.Code())
	})

	t.Run("jitter stays under 2s", func(t *testing.T) {
		c := testClassifier(0.999)
		cls := c.Classify(503, "5", "")
		require.Equal(t, ClassServerBusy, cls.Class)
		assert.GreaterOrEqual(t, cls.Delay, 5500*time.Millisecond)
		assert.Less(t, cls.Delay, 7*time.Second)
	})

	t.Run("http date form", func(t *testing.T) {
		c := testClassifier(0)
		at := time.Date(2025, 6, 1, 12, 0, 10, 0, time.UTC)
		cls := c.Classify(503, at.Format(time.RFC1123), "")
		require.Equal(t, ClassServerBusy, cls.Class)
		assert.Equal(t, 10500*time.Millisecond, cls.Delay)
	})
}

func TestClassify_RateLimitedWithoutHint(t *testing.T) {
	c := testClassifier(0)

	tests := []struct {
		name       string
		retryAfter string
	}{
		{"missing", ""},
		{"garbage", "soon"},
		{"negative seconds", "-3"},
		{"date in the past", "Sun, 01 Jun 2025 11:00:00 GMT"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cls := c.Classify(429, tc.retryAfter, "")
			assert.Equal(t, ClassFatal, cls.Class)
			assert.Equal(t, CodeRateLimited, cls.Err.Code())
		})
	}
}

func TestClassify_ServiceUnavailableWithoutHintIsTransient(t *testing.T) {
	c := testClassifier(0)
	cls := c.Classify(503, "", "upstream down")
	assert.Equal(t, ClassTransient, cls.Class)
	assert.Equal(t, CodeForStatus(503), cls.Err.Code())
}

func TestClassify_Transient(t *testing.T) {
	c := testClassifier(0)

	t.Run("socket failure", func(t *testing.T) {
		cls := c.Classify(0, "", "connection reset by peer")
		assert.Equal(t, ClassTransient, cls.Class)
		assert.Equal(t, CodeNetwork, cls.Err.Code())
		assert.Equal(t, "connection reset by peer", cls.Err.Message())
	})

	t.Run("server error", func(t *testing.T) {
		cls := c.Classify(500, "", "")
		assert.Equal(t, ClassTransient, cls.Class)
		assert.Equal(t, "http_500", cls.Err.Code())
	})

	t.Run("retry-after ignored off 429 and 503", func(t *testing.T) {
		cls := c.Classify(500, "5", "")
		assert.Equal(t, ClassTransient, cls.Class)
	})
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value string
		want  time.Duration
		ok    bool
	}{
		{"empty", "", 0, false},
		{"zero seconds", "0", 0, true},
		{"seconds", "120", 2 * time.Minute, true},
		{"padded", "  30  ", 30 * time.Second, true},
		{"negative", "-1", 0, false},
		{"not a number", "later", 0, false},
		{"future date", "Sun, 01 Jun 2025 12:01:00 GMT", time.Minute, true},
		{"past date", "Sun, 01 Jun 2025 11:59:00 GMT", 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := parseRetryAfter(tc.value, now)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
