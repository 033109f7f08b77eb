package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"FlousWise/internal/config"
	"FlousWise/internal/faults"
	"FlousWise/internal/models"
	"FlousWise/internal/rag/interfaces"
	pkghttp "FlousWise/pkg/http"
	"FlousWise/pkg/logger"
)

// Service fetches user financial profiles from the Finance Service, with a
// TTL cache in front of it. The Finance Service owns the data; this service
// only holds short-lived copies.
//
// Cache policy: fetched profiles are cached for the configured TTL. A
// "profile not found" answer is never cached, because the user may be in the
// middle of onboarding and a stale negative would hide their new profile.
// Cache failures are tolerated: the service logs and fetches directly.
type Service struct {
	baseURL  string
	cacheTTL time.Duration
	cache    Cache
	client   *pkghttp.Client
	log      *logger.Logger
}

// New creates a profile Service. The HTTP client carries the circuit breaker
// protecting the Finance Service from being hammered while it is down.
func New(cfg *config.ProfileConfig, cache Cache, client *pkghttp.Client, log *logger.Logger) (*Service, error) {
	ttl := 5 * time.Minute
	if cfg.CacheTTL != "" {
		var err error
		ttl, err = time.ParseDuration(cfg.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("invalid profile cache TTL '%s': %w", cfg.CacheTTL, err)
		}
	}
	return &Service{
		baseURL:  cfg.FinanceServiceURL,
		cacheTTL: ttl,
		cache:    cache,
		client:   client,
		log:      log,
	}, nil
}

// cacheKey builds the Redis key for a user's cached profile.
func cacheKey(userID string) string {
	return fmt.Sprintf("user:profile:%s", userID)
}

// Fetch returns the user's profile, from cache when possible.
// Returns faults.ProfileNotFound when the Finance Service reports the user
// has no profile, and faults.ProfileFetchError for every other failure.
func (s *Service) Fetch(ctx context.Context, userID, token string) (*models.UserProfile, error) {
	key := cacheKey(userID)

	if cached, ok, err := s.cache.Get(ctx, key); err != nil {
		s.log.WithPayload(map[string]interface{}{"error": err.Error()}).
			Warn("Profile cache read failed, fetching directly")
	} else if ok {
		var profile models.UserProfile
		if err := json.Unmarshal([]byte(cached), &profile); err == nil {
			s.log.Debug("Profile cache hit")
			return &profile, nil
		}
		// Corrupt cache entry; drop it and refetch.
		_ = s.cache.Delete(ctx, key)
	}

	profile, body, err := s.fetchRemote(ctx, userID, token)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, string(body), s.cacheTTL); err != nil {
		s.log.WithPayload(map[string]interface{}{"error": err.Error()}).
			Warn("Failed to cache profile")
	}

	return profile, nil
}

// fetchRemote calls the Finance Service, passing the caller's bearer token
// through unchanged.
func (s *Service) fetchRemote(ctx context.Context, userID, token string) (*models.UserProfile, []byte, error) {
	url := s.baseURL + "/api/profile"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, &faults.ProfileFetchError{UserID: userID, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, nil, &faults.ProfileFetchError{UserID: userID, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil, &faults.ProfileNotFound{UserID: userID}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, &faults.ProfileFetchError{
			UserID: userID,
			Err:    fmt.Errorf("finance service returned status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &faults.ProfileFetchError{UserID: userID, Err: err}
	}

	var profile models.UserProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, nil, &faults.ProfileFetchError{
			UserID: userID,
			Err:    fmt.Errorf("corrupt profile payload: %w", err),
		}
	}
	if profile.UserID == "" {
		profile.UserID = userID
	}

	return &profile, body, nil
}

// Invalidate drops the cached profile for a user, e.g. after the Finance
// Service reports an update. Failures are logged, not returned: the entry
// expires on its own.
func (s *Service) Invalidate(ctx context.Context, userID string) {
	if err := s.cache.Delete(ctx, cacheKey(userID)); err != nil {
		s.log.WithPayload(map[string]interface{}{"error": err.Error()}).
			Warn("Failed to invalidate cached profile")
	}
}

// compile-time check to ensure Service implements the ProfileSource interface
var _ interfaces.ProfileSource = (*Service)(nil)
