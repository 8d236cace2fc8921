package middleware

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"
)

var ErrNoEmailClaim = errors.New("token has no email claim")

// Identity is the verified session behind a request. Accounts are keyed by email.
type Identity struct {
	UID   string
	Email string
}

type TokenVerifier interface {
	VerifyToken(ctx context.Context, raw string) (*Identity, error)
}

type FirebaseVerifier struct {
	client *auth.Client
}

func NewFirebaseVerifier(client *auth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

func (fv *FirebaseVerifier) VerifyToken(ctx context.Context, raw string) (*Identity, error) {
	token, err := fv.client.VerifyIDToken(ctx, raw)
	if err != nil {
		return nil, err
	}
	email, _ := token.Claims["email"].(string)
	if email == "" {
		return nil, ErrNoEmailClaim
	}
	return &Identity{UID: token.UID, Email: email}, nil
}

type SessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTVerifier accepts HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	secret []byte
	issuer string
}

func NewJWTVerifier(secret []byte, issuer string) *JWTVerifier {
	return &JWTVerifier{secret: secret, issuer: issuer}
}

func (jv *JWTVerifier) VerifyToken(ctx context.Context, raw string) (*Identity, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if jv.issuer != "" {
		opts = append(opts, jwt.WithIssuer(jv.issuer))
	}
	token, err := jwt.ParseWithClaims(raw, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jv.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Email == "" {
		return nil, ErrNoEmailClaim
	}
	return &Identity{UID: claims.Subject, Email: claims.Email}, nil
}

// Sign issues a session token for local development and tests.
func (jv *JWTVerifier) Sign(claims *SessionClaims) (string, error) {
	if jv.issuer != "" && claims.Issuer == "" {
		claims.Issuer = jv.issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jv.secret)
}
