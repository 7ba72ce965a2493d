package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const adminUserKey = "admin_user"

// AdminCredentials accepts either the plain password or a bcrypt hash; the
// hash wins when both are set.
type AdminCredentials struct {
	Username     string
	Password     string
	PasswordHash string
	JWTSecret    []byte
	TokenTTL     time.Duration
}

// Check compares username and password in constant time for the plain variant.
func (a AdminCredentials) Check(username, password string) bool {
	if subtle.ConstantTimeCompare([]byte(username), []byte(a.Username)) != 1 {
		return false
	}
	if a.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
	}
	if a.Password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(a.Password)) == 1
}

// IssueToken signs an HS256 admin token.
func (a AdminCredentials) IssueToken(now time.Time) (string, time.Time, error) {
	if len(a.JWTSecret) == 0 {
		return "", time.Time{}, errors.New("jwt secret not configured")
	}
	ttl := a.TokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	exp := now.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   a.Username,
		Audience:  jwt.ClaimStrings{"admin"},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString(a.JWTSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// ParseToken returns the subject of a valid, unexpired admin token.
func (a AdminCredentials) ParseToken(raw string) (string, error) {
	if len(a.JWTSecret) == 0 {
		return "", errors.New("jwt secret not configured")
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return a.JWTSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithAudience("admin"))
	if err != nil {
		return "", err
	}
	if claims.Subject != a.Username {
		return "", errors.New("token subject is not the admin user")
	}
	return claims.Subject, nil
}

// AdminAuth gates a route group behind HTTP Basic or a bearer token.
func AdminAuth(creds AdminCredentials) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if strings.HasPrefix(strings.ToLower(header), "bearer ") {
			user, err := creds.ParseToken(strings.TrimSpace(header[len("bearer "):]))
			if err == nil {
				c.Set(adminUserKey, user)
				c.Next()
				return
			}
		} else if user, pass, ok := c.Request.BasicAuth(); ok && creds.Check(user, pass) {
			c.Set(adminUserKey, user)
			c.Next()
			return
		}

		c.Header("WWW-Authenticate", `Basic realm="Login Required"`)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":      "authentication required",
			"code":       "unauthorized",
			"request_id": GetRequestID(c),
		})
	}
}

// AdminUser returns the authenticated admin name set by AdminAuth.
func AdminUser(c *gin.Context) string {
	return c.GetString(adminUserKey)
}
