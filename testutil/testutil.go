package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"contests/database"
	"contests/models"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// TestSecret signs the tokens produced by MakeToken
var TestSecret = []byte("test-secret")

// SetupTestDB opens a fresh SQLite database in a temporary directory with the full schema and
// the default administrator (id 1). A single connection keeps concurrent tests free of
// SQLITE_BUSY while still interleaving their statements.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "contests.db")
	db, err := database.Open(sqlite.Open(database.SQLiteDSN(path)))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	if err := database.Populate(db); err != nil {
		t.Fatalf("Failed to populate test database: %v", err)
	}

	return db
}

// Admin returns the seeded administrator
func Admin(t *testing.T, db *gorm.DB) models.User {
	t.Helper()

	var admin models.User
	if err := db.First(&admin, database.AdminID).Error; err != nil {
		t.Fatalf("Failed to load admin: %v", err)
	}
	return admin
}

// CreateTestUser inserts a user with the given display name and role
func CreateTestUser(t *testing.T, db *gorm.DB, name, role string) models.User {
	t.Helper()

	user := models.User{Name: name, Email: name + "@example.com", Role: role}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// CreateTestCompetition inserts a competition authored by authorID
func CreateTestCompetition(t *testing.T, db *gorm.DB, name string, authorID uint, applyTill time.Time) models.Competition {
	t.Helper()

	competition := models.Competition{
		Name:        name,
		Description: "A test competition",
		AuthorID:    authorID,
		ApplyTill:   applyTill,
	}
	if err := db.Create(&competition).Error; err != nil {
		t.Fatalf("Failed to create test competition: %v", err)
	}
	return competition
}

// CreateTestSignup inserts a signup with an optional score
func CreateTestSignup(t *testing.T, db *gorm.DB, userID, competitionID uint, score *float64) models.Signup {
	t.Helper()

	signup := models.Signup{
		UserID:        userID,
		CompetitionID: competitionID,
		AppliedAt:     time.Now().UTC(),
		Score:         score,
	}
	if err := db.Create(&signup).Error; err != nil {
		t.Fatalf("Failed to create test signup: %v", err)
	}
	return signup
}

// CountSignups counts the signup rows of a (user, competition) pair
func CountSignups(t *testing.T, db *gorm.DB, userID, competitionID uint) int64 {
	t.Helper()

	var count int64
	if err := db.Model(&models.Signup{}).Where("user_id = ? AND competition_id = ?", userID, competitionID).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count signups: %v", err)
	}
	return count
}

// Score returns a pointer to v
func Score(v float64) *float64 {
	return &v
}

// MakeToken signs a token for userID with TestSecret
func MakeToken(t *testing.T, userID uint) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString(TestSecret)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return signed
}

// MakeRequest creates an HTTP test request, authenticated when token is not empty
func MakeRequest(method, path string, body interface{}, token string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided value
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
