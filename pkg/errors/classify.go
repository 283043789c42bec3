package errors

import (
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Class is the retry disposition assigned to a transport failure.
type Class int

const (
	// ClassTransient failures are retried on the exponential schedule.
	ClassTransient Class = iota
	// ClassFatal failures stop the engine; retrying cannot help.
	ClassFatal
	// ClassServerBusy failures are retried after the server-dictated
	// delay, bypassing the exponential schedule.
	ClassServerBusy
)

// String returns the string representation of a class.
func (c Class) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassFatal:
		return "fatal"
	case ClassServerBusy:
		return "server_busy"
	default:
		return "unknown"
	}
}

// Classification is the classifier's verdict on a single failure.
type Classification struct {
	Class Class

	// Delay is the server-dictated retry delay, populated only for
	// ClassServerBusy.
	Delay time.Duration

	// Err carries the structured error to surface to the host.
	Err StreamError
}

// Jitter added to a server-supplied Retry-After hint so that many
// clients honoring the same hint do not reconnect in lockstep.
const (
	retryHintJitterMin = 500 * time.Millisecond
	retryHintJitterMax = 2 * time.Second
)

// Classifier maps a transport failure (status code plus optional
// Retry-After hint) to a retry disposition. The zero value is not
// usable; create one with NewClassifier.
type Classifier struct {
	now       func() time.Time
	randFloat func() float64
}

// NewClassifier creates a classifier using the wall clock and the
// default random source.
func NewClassifier() *Classifier {
	return &Classifier{
		now:       time.Now,
		randFloat: rand.Float64,
	}
}

// NewClassifierWithSource creates a classifier with injectable clock and
// randomness, for deterministic tests.
func NewClassifierWithSource(now func() time.Time, randFloat func() float64) *Classifier {
	return &Classifier{now: now, randFloat: randFloat}
}

// Classify applies the fixed-priority rules:
//
//  1. 400, 401, 403 are fatal: the credentials or request are invalid.
//  2. 429 or 503 with a usable Retry-After is server-busy with the
//     hinted delay plus jitter.
//  3. 429 without a usable hint is fatal: without a hint, retrying a
//     rate-limited endpoint risks amplifying abuse.
//  4. Everything else, including status 0 (socket failure), is transient.
//
// message is the transport's description of the failure, used for the
// transient error record.
func (c *Classifier) Classify(status int, retryAfter string, message string) Classification {
	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return Classification{Class: ClassFatal, Err: AuthRejected(status)}
	}

	if status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable {
		if hint, ok := parseRetryAfter(retryAfter, c.now()); ok {
			delay := hint + c.hintJitter()
			return Classification{
				Class: ClassServerBusy,
				Delay: delay,
				Err:   ServerBusy(status, delay),
			}
		}
		if status == http.StatusTooManyRequests {
			return Classification{Class: ClassFatal, Err: RateLimitedNoHint()}
		}
	}

	return Classification{Class: ClassTransient, Err: TransientFailure(status, message)}
}

// hintJitter returns a random duration in [retryHintJitterMin, retryHintJitterMax).
func (c *Classifier) hintJitter() time.Duration {
	span := float64(retryHintJitterMax - retryHintJitterMin)
	return retryHintJitterMin + time.Duration(c.randFloat()*span)
}

// parseRetryAfter accepts the two forms RFC 7231 allows for Retry-After:
// a non-negative integer number of seconds, or an HTTP-date. A date in
// the past yields no usable hint.
func parseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}

	if at, err := http.ParseTime(value); err == nil {
		d := at.Sub(now)
		if d <= 0 {
			return 0, false
		}
		return d, true
	}

	return 0, false
}
