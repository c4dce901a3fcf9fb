package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"qa-assignment-api/internal/domain"
)

// Claims carries the subject (user email) in "sub" and a random "jti" so two
// tokens issued in the same second for the same subject still differ.
type Claims struct {
	jwt.RegisteredClaims
}

type JWTer struct {
	Secret    []byte
	Issuer    string
	Algorithm string
	TTL       time.Duration
	Leeway    time.Duration
	Now       func() time.Time

	method jwt.SigningMethod
}

var signingMethods = map[string]jwt.SigningMethod{
	"HS256": jwt.SigningMethodHS256,
	"HS384": jwt.SigningMethodHS384,
	"HS512": jwt.SigningMethodHS512,
}

func SupportedAlgorithm(name string) bool {
	_, ok := signingMethods[name]
	return ok
}

func NewJWTer(secret []byte, issuer, alg string, ttl time.Duration) (*JWTer, error) {
	j := &JWTer{Secret: secret, Issuer: issuer, Algorithm: alg, TTL: ttl}
	if err := j.init(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *JWTer) init() error {
	if len(j.Secret) == 0 {
		return errors.New("jwt: empty signing secret")
	}
	if j.TTL <= 0 {
		return fmt.Errorf("jwt: non-positive ttl %s", j.TTL)
	}
	if j.Algorithm == "" {
		j.Algorithm = "HS256"
	}
	m, ok := signingMethods[j.Algorithm]
	if !ok {
		return fmt.Errorf("jwt: unsupported algorithm %q", j.Algorithm)
	}
	j.method = m
	return nil
}

func (j *JWTer) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

func (j *JWTer) signingMethod() jwt.SigningMethod {
	if j.method == nil {
		if m, ok := signingMethods[j.Algorithm]; ok {
			return m
		}
		return jwt.SigningMethodHS256
	}
	return j.method
}

// Issue signs a token for subject. A non-positive ttl means the default TTL.
func (j *JWTer) Issue(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = j.TTL
	}
	now := j.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    j.Issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(j.signingMethod(), claims)
	return token.SignedString(j.Secret)
}

// Parse returns the verified claims. Any failure is reported as
// domain.ErrInvalidToken with the parser error wrapped for logging.
func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	method := j.signingMethod()
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
		jwt.WithLeeway(j.Leeway),
	}
	if j.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.Issuer))
	}
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return j.Secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || c.Subject == "" {
		return nil, domain.ErrInvalidToken
	}
	return c, nil
}

// Verify returns the token subject.
func (j *JWTer) Verify(tokenStr string) (string, error) {
	c, err := j.Parse(tokenStr)
	if err != nil {
		return "", err
	}
	return c.Subject, nil
}

// Refresh issues a fresh default-TTL token for the subject of a valid token.
// The old token stays valid until its own expiry.
func (j *JWTer) Refresh(tokenStr string) (string, error) {
	sub, err := j.Verify(tokenStr)
	if err != nil {
		return "", err
	}
	return j.Issue(sub, 0)
}
