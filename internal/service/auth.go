package service

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/time/rate"

	"github.com/rocketscienceinc/gamehub-backend/internal/apperror"
	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
)

var ErrUnknownKey = errors.New("unknown signing key")

const (
	defaultVerifyTimeout = 5 * time.Second
	minKeyRefresh        = 30 * time.Second
	clockLeeway          = 30 * time.Second
)

type tokenDenylist interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type VerifierConfig struct {
	JWKSURL  string
	Issuer   string
	Audience string
	CacheTTL time.Duration
	Timeout  time.Duration
}

type identityClaims struct {
	jwt.RegisteredClaims
	PreferredUsername string `json:"preferred_username"`
	Name              string `json:"name"`
}

type jsonWebKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// IdentityVerifier checks bearer tokens issued by the OIDC provider against its published keys.
type IdentityVerifier struct {
	logger   *slog.Logger
	config   VerifierConfig
	client   *http.Client
	denylist tokenDenylist
	now      func() time.Time

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time

	refreshMu    sync.Mutex
	refreshLimit *rate.Limiter
}

func NewIdentityVerifier(logger *slog.Logger, config VerifierConfig, denylist tokenDenylist) *IdentityVerifier {
	if config.Timeout <= 0 {
		config.Timeout = defaultVerifyTimeout
	}

	return &IdentityVerifier{
		logger:   logger,
		config:   config,
		client:   &http.Client{Timeout: config.Timeout},
		denylist: denylist,
		now:      time.Now,
		keys:     make(map[string]*rsa.PublicKey),

		refreshLimit: rate.NewLimiter(rate.Every(minKeyRefresh), 1),
	}
}

// Verify validates the token signature and claims and returns the user it identifies.
func (that *IdentityVerifier) Verify(ctx context.Context, rawToken string) (*entity.User, error) {
	log := that.logger.With("method", "Verify")

	ctx, cancel := context.WithTimeout(ctx, that.config.Timeout)
	defer cancel()

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockLeeway),
		jwt.WithTimeFunc(that.now),
	}
	if that.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(that.config.Issuer))
	}
	if that.config.Audience != "" {
		options = append(options, jwt.WithAudience(that.config.Audience))
	}

	var claims identityClaims
	_, err := jwt.ParseWithClaims(strings.TrimSpace(rawToken), &claims, func(token *jwt.Token) (any, error) {
		kid, _ := token.Header["kid"].(string)
		return that.key(ctx, kid)
	}, options...)
	if err != nil {
		log.Debug("token rejected", "error", err)
		return nil, fmt.Errorf("%w: %w", apperror.ErrUnauthorized, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", apperror.ErrUnauthorized)
	}

	if claims.ID != "" && that.denylist != nil {
		revoked, err := that.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			log.Error("failed to check token denylist", "error", err)
			return nil, fmt.Errorf("%w: %w", apperror.ErrStoreUnavailable, err)
		}
		if revoked {
			return nil, fmt.Errorf("%w: %w", apperror.ErrUnauthorized, apperror.ErrTokenRevoked)
		}
	}

	return &entity.User{
		ID:       claims.Subject,
		Username: username(claims),
	}, nil
}

func username(claims identityClaims) string {
	switch {
	case claims.PreferredUsername != "":
		return claims.PreferredUsername
	case claims.Name != "":
		return claims.Name
	default:
		return entity.AnonymousUsername
	}
}

// key returns the cached key for kid, refreshing the key set when it is stale or kid is unknown.
func (that *IdentityVerifier) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if key, fresh := that.cachedKey(kid); key != nil && fresh {
		return key, nil
	}

	if err := that.refresh(ctx); err != nil {
		// a stale key still verifies while the provider is unreachable
		if key, _ := that.cachedKey(kid); key != nil {
			that.logger.Warn("using stale signing key", "kid", kid, "error", err)
			return key, nil
		}
		return nil, err
	}

	if key, _ := that.cachedKey(kid); key != nil {
		return key, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownKey, kid)
}

func (that *IdentityVerifier) cachedKey(kid string) (*rsa.PublicKey, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	fresh := that.config.CacheTTL <= 0 || that.now().Sub(that.fetchedAt) < that.config.CacheTTL

	if kid == "" && len(that.keys) == 1 {
		for _, key := range that.keys {
			return key, fresh
		}
	}

	return that.keys[kid], fresh
}

func (that *IdentityVerifier) refresh(ctx context.Context) error {
	that.refreshMu.Lock()
	defer that.refreshMu.Unlock()

	// unknown kids in forged tokens must not turn into a request per token
	if !that.refreshLimit.Allow() {
		return nil
	}

	keys, err := that.fetchKeys(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch signing keys: %w", err)
	}

	that.mu.Lock()
	that.keys = keys
	that.fetchedAt = that.now()
	that.mu.Unlock()

	that.logger.Info("signing keys refreshed", "count", len(keys))

	return nil
}

func (that *IdentityVerifier) fetchKeys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, that.config.JWKSURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	response, err := that.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("failed to request key set: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("key set request returned %d", response.StatusCode)
	}

	var set struct {
		Keys []jsonWebKey `json:"keys"`
	}
	if err = json.NewDecoder(response.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("failed to decode key set: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, jwk := range set.Keys {
		if jwk.Kty != "RSA" || (jwk.Use != "" && jwk.Use != "sig") {
			continue
		}

		key, err := rsaKey(jwk)
		if err != nil {
			that.logger.Warn("skipping malformed signing key", "kid", jwk.Kid, "error", err)
			continue
		}
		keys[jwk.Kid] = key
	}

	return keys, nil
}

func rsaKey(jwk jsonWebKey) (*rsa.PublicKey, error) {
	n, err := base64.RawURLEncoding.DecodeString(jwk.N)
	if err != nil {
		return nil, fmt.Errorf("invalid modulus: %w", err)
	}

	e, err := base64.RawURLEncoding.DecodeString(jwk.E)
	if err != nil {
		return nil, fmt.Errorf("invalid exponent: %w", err)
	}

	exponent := new(big.Int).SetBytes(e)
	if len(n) == 0 || !exponent.IsInt64() || exponent.Int64() < 3 {
		return nil, errors.New("invalid key parameters")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(n),
		E: int(exponent.Int64()),
	}, nil
}
