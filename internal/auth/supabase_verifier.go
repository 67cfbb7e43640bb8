package auth

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	defaultCacheTTL = 30 * time.Second
	maxCacheEntries = 1024
)

// SupabaseVerifier checks access tokens against Supabase Auth and remembers
// accepted tokens for a short TTL. Rejections are never cached.
type SupabaseVerifier struct {
	baseURL  string
	apiKey   string
	client   *http.Client
	cacheTTL time.Duration
	now      func() time.Time

	mu    sync.Mutex
	cache map[[sha256.Size]byte]cachedClaims
}

type cachedClaims struct {
	claims  Claims
	expires time.Time
}

type supabaseUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func NewSupabaseVerifier(baseURL, apiKey string) *SupabaseVerifier {
	return &SupabaseVerifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		cacheTTL: defaultCacheTTL,
		now:      time.Now,
		cache:    make(map[[sha256.Size]byte]cachedClaims),
	}
}

// WithCacheTTL sets how long accepted tokens are remembered; zero disables
// caching.
func (v *SupabaseVerifier) WithCacheTTL(ttl time.Duration) *SupabaseVerifier {
	v.cacheTTL = ttl
	return v
}

func (v *SupabaseVerifier) Verify(ctx context.Context, token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, fmt.Errorf("token is required")
	}
	if v.baseURL == "" {
		return Claims{}, fmt.Errorf("supabase url is not configured")
	}
	if v.apiKey == "" {
		return Claims{}, fmt.Errorf("supabase api key is not configured")
	}

	key := sha256.Sum256([]byte(token))
	if claims, ok := v.cached(key); ok {
		return claims, nil
	}

	claims, err := v.fetchUser(ctx, token)
	if err != nil {
		return Claims{}, err
	}
	v.remember(key, claims)
	return claims, nil
}

func (v *SupabaseVerifier) fetchUser(ctx context.Context, token string) (Claims, error) {
	url := v.baseURL + "/auth/v1/user"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Claims{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", v.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return Claims{}, fmt.Errorf("token verification request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Claims{}, fmt.Errorf("token verification failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var user supabaseUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return Claims{}, fmt.Errorf("decode supabase user: %w", err)
	}
	if user.ID == "" {
		return Claims{}, fmt.Errorf("token verification failed: missing user id")
	}

	return Claims{Subject: user.ID, Email: user.Email, Role: user.Role}, nil
}

func (v *SupabaseVerifier) cached(key [sha256.Size]byte) (Claims, bool) {
	if v.cacheTTL <= 0 {
		return Claims{}, false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	entry, ok := v.cache[key]
	if !ok {
		return Claims{}, false
	}
	if !v.now().Before(entry.expires) {
		delete(v.cache, key)
		return Claims{}, false
	}
	return entry.claims, true
}

func (v *SupabaseVerifier) remember(key [sha256.Size]byte, claims Claims) {
	if v.cacheTTL <= 0 {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.now()
	if len(v.cache) >= maxCacheEntries {
		for k, entry := range v.cache {
			if !now.Before(entry.expires) {
				delete(v.cache, k)
			}
		}
		if len(v.cache) >= maxCacheEntries {
			v.cache = make(map[[sha256.Size]byte]cachedClaims)
		}
	}
	v.cache[key] = cachedClaims{claims: claims, expires: now.Add(v.cacheTTL)}
}
