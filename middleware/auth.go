package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/navbryce/next-social-be/db"
	"github.com/navbryce/next-social-be/model"
	"github.com/navbryce/next-social-be/util"
	"go.uber.org/zap"
)

const (
	IDENTITY_KEY = "identity"
	USER_KEY     = "user"

	accessTokenQueryParam = "access_token"
)

type AuthConfig struct {
	SessionNotRequired    bool
	AppAccountNotRequired bool
}

func abortWith(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
	c.Abort()
}

// bearerToken reads the token from the Authorization header. Browsers cannot set
// headers on an EventSource, so the access_token query parameter is accepted too.
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if token := c.Query(accessTokenQueryParam); token != "" {
			return token, true
		}
		return "", false
	}
	if strings.Index(header, "Bearer ") != 0 || len(header) < 8 {
		return "", false
	}
	return header[7:], true
}

func GenAuth(userDB db.UserDatabase, verifier TokenVerifier, config *AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			if config.SessionNotRequired {
				return
			}
			if c.GetHeader("Authorization") != "" {
				abortWith(c, http.StatusUnauthorized, "incorrectly formatted authorization header")
				return
			}
			abortWith(c, http.StatusUnauthorized, "no authorization header")
			return
		}

		identity, err := verifier.VerifyToken(c, raw)
		if err != nil {
			util.Log.Debug("token verification failed", zap.Error(err))
			if config.SessionNotRequired {
				return
			}
			abortWith(c, http.StatusUnauthorized, "invalid token")
			return
		}
		c.Set(IDENTITY_KEY, identity)

		user, err := userDB.GetUserByEmail(c, identity.Email)
		if err != nil {
			util.Log.Error("failed to load user for session", zap.String("email", identity.Email), zap.Error(err))
			abortWith(c, http.StatusInternalServerError, "database error")
			return
		}
		if user == nil {
			if config.AppAccountNotRequired {
				return
			}
			abortWith(c, http.StatusForbidden, "must have a user profile")
			return
		}
		c.Set(USER_KEY, user)
	}
}

// RequireAccount rejects requests that passed GenAuth without an app account.
func RequireAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUser(c) == nil {
			abortWith(c, http.StatusForbidden, "must have a user profile")
		}
	}
}

func GetIdentity(c *gin.Context) *Identity {
	identity, ok := c.Get(IDENTITY_KEY)
	if !ok {
		return nil
	}
	return identity.(*Identity)
}

func GetUser(c *gin.Context) *model.User {
	user, ok := c.Get(USER_KEY)
	if !ok {
		return nil
	}
	return user.(*model.User)
}

func MustGetUser(c *gin.Context) *model.User {
	return c.MustGet(USER_KEY).(*model.User)
}
