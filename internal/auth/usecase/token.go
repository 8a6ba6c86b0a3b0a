package usecase

import (
	"fmt"
	"time"

	authdomain "mailassist-backend/internal/auth/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// jwtIssuer implements authdomain.TokenIssuer with HS256 tokens
type jwtIssuer struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewJWTIssuer creates a token issuer signing with secret
func NewJWTIssuer(secret string, expiry time.Duration) authdomain.TokenIssuer {
	return &jwtIssuer{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

func (j *jwtIssuer) Issue(identity authdomain.Identity) (string, error) {
	now := j.now()
	claims := jwt.MapClaims{
		"sub":       identity.Email,
		"google_id": identity.ID,
		"name":      identity.Name,
		"jti":       uuid.New().String(),
		"exp":       now.Add(j.expiry).Unix(),
		"iat":       now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

func (j *jwtIssuer) Verify(tokenString string) (*authdomain.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(j.now))

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", authdomain.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: invalid token claims", authdomain.ErrInvalidToken)
	}

	email, _ := claims["sub"].(string)
	if email == "" {
		return nil, fmt.Errorf("%w: missing subject", authdomain.ErrInvalidToken)
	}
	googleID, _ := claims["google_id"].(string)
	name, _ := claims["name"].(string)

	out := &authdomain.TokenClaims{
		Email:    email,
		GoogleID: googleID,
		Name:     name,
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
