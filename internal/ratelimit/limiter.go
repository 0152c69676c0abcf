package ratelimit

import (
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dalfonso89/currency-converter/internal/config"
	"github.com/dalfonso89/currency-converter/internal/logger"
)

// idleBucketTTL is how long an untouched client bucket is kept
const idleBucketTTL = 24 * time.Hour

// Decision is the outcome of one request against a client's bucket
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter implements a token bucket rate limiter per client
type Limiter struct {
	Configuration *config.Config
	logger        *logger.Logger
	now           func() time.Time

	// Map of client key -> token bucket
	clientBuckets map[string]*tokenBucket
	bucketsMutex  sync.Mutex

	// Cleanup goroutine control
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	stopOnce      sync.Once
}

// tokenBucket refills continuously at refillPerSecond up to capacity
type tokenBucket struct {
	capacity        float64
	tokens          float64
	refillPerSecond float64
	lastRefill      time.Time
	lastSeen        time.Time
}

// NewLimiter creates a new rate limiter
func NewLimiter(configuration *config.Config, logger *logger.Logger) *Limiter {
	rateLimiter := &Limiter{
		Configuration: configuration,
		logger:        logger,
		now:           time.Now,
		clientBuckets: make(map[string]*tokenBucket),
		cleanupTicker: time.NewTicker(5 * time.Minute),
		stopCleanup:   make(chan struct{}),
	}

	go rateLimiter.cleanup()

	return rateLimiter
}

// Allow checks if a request from the given client is allowed
func (rateLimiter *Limiter) Allow(clientKey string) bool {
	return rateLimiter.Take(clientKey).Allowed
}

// Take spends one token from the client's bucket when one is available
func (rateLimiter *Limiter) Take(clientKey string) Decision {
	limit := rateLimiter.Configuration.RateLimitRequests
	if !rateLimiter.Configuration.RateLimitEnabled {
		return Decision{Allowed: true, Limit: limit, Remaining: limit}
	}

	currentTime := rateLimiter.now()

	rateLimiter.bucketsMutex.Lock()
	defer rateLimiter.bucketsMutex.Unlock()

	bucket, exists := rateLimiter.clientBuckets[clientKey]
	if !exists {
		bucket = rateLimiter.newBucket(currentTime)
		rateLimiter.clientBuckets[clientKey] = bucket
	}

	bucket.refill(currentTime)
	bucket.lastSeen = currentTime

	allowed := bucket.tokens >= 1
	if allowed {
		bucket.tokens--
	}

	return Decision{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: int(math.Floor(bucket.tokens)),
		ResetAt:   bucket.fullAt(currentTime),
	}
}

func (rateLimiter *Limiter) newBucket(currentTime time.Time) *tokenBucket {
	capacity := float64(rateLimiter.Configuration.RateLimitBurst)
	refillPerSecond := 0.0
	if window := rateLimiter.Configuration.RateLimitWindow; window > 0 {
		refillPerSecond = float64(rateLimiter.Configuration.RateLimitRequests) / window.Seconds()
	}

	return &tokenBucket{
		capacity:        capacity,
		tokens:          capacity,
		refillPerSecond: refillPerSecond,
		lastRefill:      currentTime,
		lastSeen:        currentTime,
	}
}

func (bucket *tokenBucket) refill(currentTime time.Time) {
	if !currentTime.After(bucket.lastRefill) {
		return
	}
	elapsed := currentTime.Sub(bucket.lastRefill).Seconds()
	bucket.tokens = math.Min(bucket.capacity, bucket.tokens+elapsed*bucket.refillPerSecond)
	bucket.lastRefill = currentTime
}

// fullAt is when the bucket will be back at capacity
func (bucket *tokenBucket) fullAt(currentTime time.Time) time.Time {
	missing := bucket.capacity - bucket.tokens
	if missing <= 0 || bucket.refillPerSecond <= 0 {
		return currentTime
	}
	return currentTime.Add(time.Duration(missing / bucket.refillPerSecond * float64(time.Second)))
}

// ClientKey extracts the client IP used to pick a bucket
func ClientKey(request *http.Request) string {
	// First entry of X-Forwarded-For is the originating client
	if forwardedFor := request.Header.Get("X-Forwarded-For"); forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		if clientIP := parseHeaderIP(first); clientIP != "" {
			return clientIP
		}
	}

	if realIP := request.Header.Get("X-Real-IP"); realIP != "" {
		if clientIP := parseHeaderIP(realIP); clientIP != "" {
			return clientIP
		}
	}

	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return request.RemoteAddr
	}
	return host
}

// parseHeaderIP accepts a bare IP or an ip:port pair, returning "" otherwise
func parseHeaderIP(value string) string {
	value = strings.TrimSpace(value)
	if clientIP := net.ParseIP(value); clientIP != nil {
		return clientIP.String()
	}
	if host, _, err := net.SplitHostPort(value); err == nil {
		if clientIP := net.ParseIP(host); clientIP != nil {
			return clientIP.String()
		}
	}
	return ""
}

// Len returns the number of tracked clients
func (rateLimiter *Limiter) Len() int {
	rateLimiter.bucketsMutex.Lock()
	defer rateLimiter.bucketsMutex.Unlock()
	return len(rateLimiter.clientBuckets)
}

// Prune drops buckets that have not been used for a day
func (rateLimiter *Limiter) Prune() int {
	currentTime := rateLimiter.now()
	removed := 0

	rateLimiter.bucketsMutex.Lock()
	for clientKey, bucket := range rateLimiter.clientBuckets {
		if currentTime.Sub(bucket.lastSeen) > idleBucketTTL {
			delete(rateLimiter.clientBuckets, clientKey)
			removed++
		}
	}
	rateLimiter.bucketsMutex.Unlock()

	if removed > 0 {
		rateLimiter.logger.Debugf("Pruned %d idle rate limit buckets", removed)
	}
	return removed
}

func (rateLimiter *Limiter) cleanup() {
	for {
		select {
		case <-rateLimiter.cleanupTicker.C:
			rateLimiter.Prune()
		case <-rateLimiter.stopCleanup:
			rateLimiter.cleanupTicker.Stop()
			return
		}
	}
}

// Stop stops the cleanup goroutine
func (rateLimiter *Limiter) Stop() {
	rateLimiter.stopOnce.Do(func() {
		close(rateLimiter.stopCleanup)
	})
}
