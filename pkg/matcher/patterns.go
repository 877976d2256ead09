package matcher

import (
	"sync"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/rs/zerolog"
)

// MatchTimeout bounds a single regex evaluation. A timeout counts as a miss.
const MatchTimeout = 100 * time.Millisecond

// CompilePattern compiles a regex trigger pattern with the engine's options.
func CompilePattern(pattern string) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = MatchTimeout
	return re, nil
}

type compiledPattern struct {
	re  *regexp2.Regexp
	err error
}

// patternCache memoizes compilation, including failures, per pattern string.
type patternCache struct {
	mu      sync.RWMutex
	entries map[string]compiledPattern
	logger  zerolog.Logger
}

func newPatternCache(logger zerolog.Logger) *patternCache {
	return &patternCache{
		entries: make(map[string]compiledPattern),
		logger:  logger,
	}
}

// get returns the compiled pattern or nil if it does not compile.
func (c *patternCache) get(pattern string) *regexp2.Regexp {
	c.mu.RLock()
	entry, ok := c.entries[pattern]
	c.mu.RUnlock()
	if ok {
		return entry.re
	}

	re, err := CompilePattern(pattern)

	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[pattern]; ok {
		return entry.re
	}
	c.entries[pattern] = compiledPattern{re: re, err: err}
	if err != nil {
		c.logger.Debug().Err(err).Str("pattern", pattern).Msg("Pattern does not compile, trigger will never match")
	}
	return re
}

func (c *patternCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
