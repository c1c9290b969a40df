package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"contests/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

const (
	AuthCookieName = "auth_token"
	userContextKey = "user"
)

var (
	ErrNoTokenProvided = errors.New("no token provided")
	ErrInvalidToken    = errors.New("invalid or expired token")
)

// AuthMiddleware verifies the bearer token (or auth cookie) issued by the identity provider and
// loads the user named by its subject claim
func AuthMiddleware(db *gorm.DB, secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := verifyToken(tokenFromRequest(c), secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if err := db.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// AdminMiddleware rejects authenticated users that are not administrators.
// It must run after AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := GetUserFromRequest(c)
		if err != nil {
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Administrator access required"})
			return
		}
		c.Next()
	}
}

// GetUserFromRequest returns the authenticated user. When there is none it aborts the request
// with 401 and returns an error, so callers can simply return.
func GetUserFromRequest(c *gin.Context) (models.User, error) {
	value, ok := c.Get(userContextKey)
	if ok {
		if user, ok := value.(models.User); ok {
			return user, nil
		}
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrNoTokenProvided.Error()})
	return models.User{}, ErrNoTokenProvided
}

func tokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(AuthCookieName); err == nil {
		return cookie
	}
	return ""
}

func verifyToken(tokenString string, secret []byte) (uint, error) {
	if tokenString == "" {
		return 0, ErrNoTokenProvided
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}
