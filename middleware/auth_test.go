package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"contests/models"
	"contests/testutil"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

func newAuthRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(db, testutil.TestSecret), func(c *gin.Context) {
		user, err := GetUserFromRequest(c)
		if err != nil {
			return
		}
		c.JSON(http.StatusOK, user)
	})
	r.GET("/admin", AuthMiddleware(db, testutil.TestSecret), AdminMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuthMiddleware_AcceptsBearerToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db, "ana", models.RoleUser)
	r := newAuthRouter(db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, testutil.MakeRequest("GET", "/me", nil, testutil.MakeToken(t, user.ID)))

	testutil.AssertStatus(t, w, http.StatusOK)
	var got models.User
	testutil.AssertJSON(t, w, &got)
	if got.ID != user.ID || got.Name != "ana" {
		t.Errorf("Expected user %d, got %+v", user.ID, got)
	}
}

func TestAuthMiddleware_AcceptsCookie(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := newAuthRouter(db)

	req := testutil.MakeRequest("GET", "/me", nil, "")
	req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: testutil.MakeToken(t, 1)})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := newAuthRouter(db)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	expiredToken, _ := expired.SignedString(testutil.TestSecret)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	forgedToken, _ := forged.SignedString([]byte("other-secret"))

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "not-a-token"},
		{"expired", expiredToken},
		{"wrong secret", forgedToken},
		{"unknown user", testutil.MakeToken(t, 999)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, testutil.MakeRequest("GET", "/me", nil, tt.token))
			testutil.AssertStatus(t, w, http.StatusUnauthorized)
		})
	}
}

func TestAdminMiddleware(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db, "ana", models.RoleUser)
	r := newAuthRouter(db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, testutil.MakeRequest("GET", "/admin", nil, testutil.MakeToken(t, user.ID)))
	testutil.AssertStatus(t, w, http.StatusForbidden)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, testutil.MakeRequest("GET", "/admin", nil, testutil.MakeToken(t, 1)))
	testutil.AssertStatus(t, w, http.StatusNoContent)
}
