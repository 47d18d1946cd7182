// Package cache memoizes lot-matching results keyed by upload content,
// format and method, so repeated requests for the same file skip normalization and the
// engine entirely. The engine itself never sees the cache.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"btc-basis/internal/basis"
	"btc-basis/internal/model"
)

// Cache stores computed results. Implementations must treat a nil receiver
// as a cache that never hits.
type Cache interface {
	Get(ctx context.Context, key string) (*basis.Result, bool)
	Set(ctx context.Context, key string, res *basis.Result)
}

// Key builds a deterministic cache key from the content fingerprint, the
// decoder format and the settings that change the result.
func Key(fingerprint, format string, method model.Method, policy basis.Policy) string {
	keyStr := fmt.Sprintf("%s:%s:%s:%s", fingerprint, strings.ToLower(format), method, policy)

	// Hash the key to keep it reasonably sized
	hash := sha256.Sum256([]byte(keyStr))
	return hex.EncodeToString(hash[:])
}

func encode(res *basis.Result) ([]byte, error) {
	return json.Marshal(res)
}

func decode(raw []byte) (*basis.Result, error) {
	var res basis.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
