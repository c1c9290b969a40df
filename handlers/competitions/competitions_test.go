package competitions

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"contests/middleware"
	"contests/models"
	"contests/services"
	"contests/testutil"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type published struct {
	competitionID uint
	updateType    string
	rows          int
}

type publishRecorder struct {
	mu      sync.Mutex
	updates []published
}

func (p *publishRecorder) publish(competitionID uint, updateType string, scoreboard []services.ScoreRow) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, published{competitionID, updateType, len(scoreboard)})
}

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB, *publishRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.SetupTestDB(t)

	recorder := &publishRecorder{}
	h := NewHandler(
		services.NewCompetitionService(db),
		services.NewSignupService(db, nil),
		services.NewScoreService(db),
	)
	h.publish = recorder.publish

	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"), h, middleware.AuthMiddleware(db, testutil.TestSecret))
	return r, db, recorder
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCompetitionRoutes_RequireAuthentication(t *testing.T) {
	r, _, _ := setupRouter(t)

	w := serve(r, testutil.MakeRequest("GET", "/api/v1/competitions", nil, ""))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}

func TestCreateCompetition_AdminOnly(t *testing.T) {
	r, db, _ := setupRouter(t)
	user := testutil.CreateTestUser(t, db, "bob", models.RoleUser)
	body := services.CompetitionInput{Name: "Chess Open", Description: "Annual tournament", ApplyTill: "2030-05-01"}

	w := serve(r, testutil.MakeRequest("POST", "/api/v1/competitions", body, testutil.MakeToken(t, user.ID)))
	testutil.AssertStatus(t, w, http.StatusForbidden)

	w = serve(r, testutil.MakeRequest("POST", "/api/v1/competitions", body, testutil.MakeToken(t, 1)))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var created models.Competition
	testutil.AssertJSON(t, w, &created)
	if created.ID == 0 || created.AuthorID != 1 || created.Name != "Chess Open" {
		t.Errorf("Unexpected competition: %+v", created)
	}
}

func TestCreateCompetition_ValidationErrors(t *testing.T) {
	r, _, _ := setupRouter(t)
	body := services.CompetitionInput{Name: "Ch", Description: "Annual tournament", ApplyTill: "someday"}

	w := serve(r, testutil.MakeRequest("POST", "/api/v1/competitions", body, testutil.MakeToken(t, 1)))
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	testutil.AssertJSON(t, w, &resp)
	if _, ok := resp.Errors["name"]; !ok {
		t.Errorf("Expected an error for name, got %v", resp.Errors)
	}
	if _, ok := resp.Errors["apply_till"]; !ok {
		t.Errorf("Expected an error for apply_till, got %v", resp.Errors)
	}
}

func TestUpdateAndDeleteCompetition(t *testing.T) {
	r, db, _ := setupRouter(t)
	comp := testutil.CreateTestCompetition(t, db, "Chess Open", 1, time.Now().AddDate(0, 1, 0))
	token := testutil.MakeToken(t, 1)
	path := "/api/v1/competitions/" + itoa(comp.ID)

	body := services.CompetitionInput{Name: "Chess Masters", Description: "Renamed", ApplyTill: "2030-06-01"}
	w := serve(r, testutil.MakeRequest("PUT", path, body, token))
	testutil.AssertStatus(t, w, http.StatusOK)

	var updated models.Competition
	testutil.AssertJSON(t, w, &updated)
	if updated.Name != "Chess Masters" || updated.Description != "Renamed" {
		t.Errorf("Unexpected competition after update: %+v", updated)
	}

	w = serve(r, testutil.MakeRequest("DELETE", path, nil, token))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = serve(r, testutil.MakeRequest("GET", path, nil, token))
	testutil.AssertStatus(t, w, http.StatusNotFound)

	w = serve(r, testutil.MakeRequest("DELETE", path, nil, token))
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestCompetitionRoutes_RejectMalformedIDs(t *testing.T) {
	r, _, _ := setupRouter(t)
	token := testutil.MakeToken(t, 1)

	for _, path := range []string{
		"/api/v1/competitions/abc",
		"/api/v1/competitions/0/score",
		"/api/v1/competitions/-3/score",
	} {
		w := serve(r, testutil.MakeRequest("GET", path, nil, token))
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	}
}

func TestSignUp_CreatedThenOK(t *testing.T) {
	r, db, recorder := setupRouter(t)
	user := testutil.CreateTestUser(t, db, "alice", models.RoleUser)
	comp := testutil.CreateTestCompetition(t, db, "Chess Open", 1, time.Now().AddDate(0, 1, 0))
	token := testutil.MakeToken(t, user.ID)
	path := "/api/v1/competitions/" + itoa(comp.ID) + "/signup"

	w := serve(r, testutil.MakeRequest("POST", path, nil, token))
	testutil.AssertStatus(t, w, http.StatusCreated)
	var first SignupResponse
	testutil.AssertJSON(t, w, &first)
	if first.Status != "signed_up" || first.CompetitionID != comp.ID {
		t.Errorf("Unexpected first response: %+v", first)
	}

	w = serve(r, testutil.MakeRequest("POST", path, nil, token))
	testutil.AssertStatus(t, w, http.StatusOK)
	var second SignupResponse
	testutil.AssertJSON(t, w, &second)
	if second.Status != "already_signed_up" {
		t.Errorf("Expected already_signed_up, got %q", second.Status)
	}

	if n := testutil.CountSignups(t, db, user.ID, comp.ID); n != 1 {
		t.Errorf("Expected 1 signup row, got %d", n)
	}
	if len(recorder.updates) != 1 || recorder.updates[0].updateType != "signup" || recorder.updates[0].rows != 1 {
		t.Errorf("Expected one signup broadcast, got %+v", recorder.updates)
	}
}

func TestSignUp_UnknownCompetition(t *testing.T) {
	r, _, recorder := setupRouter(t)

	w := serve(r, testutil.MakeRequest("POST", "/api/v1/competitions/999/signup", nil, testutil.MakeToken(t, 1)))
	testutil.AssertStatus(t, w, http.StatusNotFound)
	if len(recorder.updates) != 0 {
		t.Errorf("Expected no broadcast, got %+v", recorder.updates)
	}
}

func TestScoreboardAndUpdateScore(t *testing.T) {
	r, db, recorder := setupRouter(t)
	alice := testutil.CreateTestUser(t, db, "alice", models.RoleUser)
	bob := testutil.CreateTestUser(t, db, "bob", models.RoleUser)
	comp := testutil.CreateTestCompetition(t, db, "Chess Open", 1, time.Now().AddDate(0, 1, 0))
	a := testutil.CreateTestSignup(t, db, alice.ID, comp.ID, testutil.Score(12.5))
	b := testutil.CreateTestSignup(t, db, bob.ID, comp.ID, nil)
	token := testutil.MakeToken(t, alice.ID)

	w := serve(r, testutil.MakeRequest("GET", "/api/v1/competitions/"+itoa(comp.ID)+"/score", nil, token))
	testutil.AssertStatus(t, w, http.StatusOK)
	var rows []services.ScoreRow
	testutil.AssertJSON(t, w, &rows)
	if len(rows) != 2 || rows[0].SignupID != a.ID || rows[1].Score != nil {
		t.Fatalf("Unexpected scoreboard: %+v", rows)
	}

	body := UpdateScoreRequest{CompetitionID: comp.ID, Score: testutil.Score(7)}
	w = serve(r, testutil.MakeRequest("PUT", "/api/v1/signups/"+itoa(b.ID)+"/score", body, token))
	testutil.AssertStatus(t, w, http.StatusOK)
	rows = nil
	testutil.AssertJSON(t, w, &rows)
	if len(rows) != 2 || rows[0].SignupID != b.ID || rows[0].Participant != "bob" {
		t.Errorf("Expected bob first after the update, got %+v", rows)
	}
	if len(recorder.updates) != 1 || recorder.updates[0].updateType != "score" {
		t.Errorf("Expected one score broadcast, got %+v", recorder.updates)
	}
}

func TestUpdateScore_Errors(t *testing.T) {
	r, db, _ := setupRouter(t)
	alice := testutil.CreateTestUser(t, db, "alice", models.RoleUser)
	chess := testutil.CreateTestCompetition(t, db, "Chess Open", 1, time.Now().AddDate(0, 1, 0))
	other := testutil.CreateTestCompetition(t, db, "Go Cup", 1, time.Now().AddDate(0, 1, 0))
	signup := testutil.CreateTestSignup(t, db, alice.ID, chess.ID, nil)
	token := testutil.MakeToken(t, 1)

	tests := []struct {
		name     string
		path     string
		body     interface{}
		expected int
	}{
		{"mismatched competition", "/api/v1/signups/" + itoa(signup.ID) + "/score", UpdateScoreRequest{CompetitionID: other.ID, Score: testutil.Score(3)}, http.StatusBadRequest},
		{"missing score", "/api/v1/signups/" + itoa(signup.ID) + "/score", map[string]interface{}{"competition_id": chess.ID}, http.StatusBadRequest},
		{"unknown signup", "/api/v1/signups/999/score", UpdateScoreRequest{CompetitionID: chess.ID, Score: testutil.Score(3)}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, testutil.MakeRequest("PUT", tt.path, tt.body, token))
			testutil.AssertStatus(t, w, tt.expected)
		})
	}
}

func TestExportScoreboard_ContentType(t *testing.T) {
	r, db, _ := setupRouter(t)
	comp := testutil.CreateTestCompetition(t, db, "Chess Open", 1, time.Now().AddDate(0, 1, 0))
	testutil.CreateTestSignup(t, db, 1, comp.ID, testutil.Score(4))

	w := serve(r, testutil.MakeRequest("GET", "/api/v1/competitions/"+itoa(comp.ID)+"/score/export", nil, testutil.MakeToken(t, 1)))
	testutil.AssertStatus(t, w, http.StatusOK)

	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Expected content type %s, got %s", xlsxContentType, ct)
	}
	if w.Body.Len() == 0 {
		t.Error("Expected a non-empty workbook")
	}

	w = serve(r, testutil.MakeRequest("GET", "/api/v1/competitions/999/score/export", nil, testutil.MakeToken(t, 1)))
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
