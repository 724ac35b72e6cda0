package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/diewo77/foodshare/internal/config"
	"github.com/diewo77/foodshare/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Donation{}, &models.FoodRequest{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestHealthz(t *testing.T) {
	db := setupTestDB(t)
	h := New(db, config.Config{}, nil)
	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
}

func TestDashboardRequiresSession(t *testing.T) {
	db := setupTestDB(t)
	h := New(db, config.Config{}, nil)
	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", w.Code)
	}
	if loc := w.Result().Header.Get("Location"); loc != "/" {
		t.Fatalf("expected redirect to entry page, got %q", loc)
	}
}

func TestLoginFlowThroughRouter(t *testing.T) {
	db := setupTestDB(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := models.User{Username: "alice", Email: "alice@test.local", Password: string(hash), Role: models.RoleDonor, UniqueID: "1234567890"}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	h := New(db, config.Config{}, nil)

	form := url.Values{"username": {"alice"}, "password": {"secret"}, "user_type": {"donor"}}
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("login: expected 303 got %d", w.Code)
	}
	if loc := w.Result().Header.Get("Location"); loc != "/donor/dashboard" {
		t.Fatalf("expected donor dashboard redirect, got %q", loc)
	}

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" && c.Value != "" {
			session = c
		}
	}
	if session == nil {
		t.Fatal("expected session cookie after login")
	}

	// The session is accepted on a protected route.
	r2 := httptest.NewRequest(http.MethodGet, "/donor/dashboard", nil)
	r2.AddCookie(session)
	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, r2)
	if w2.Code != http.StatusOK {
		t.Fatalf("dashboard: expected 200 got %d body=%s", w2.Code, w2.Body.String())
	}

	// The same session is refused on another role's routes.
	r3 := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	r3.AddCookie(session)
	w3 := httptest.NewRecorder()
	h.ServeHTTP(w3, r3)
	if w3.Code != http.StatusSeeOther {
		t.Fatalf("role gate: expected 303 got %d", w3.Code)
	}
}

func TestDeletedUserSessionCleared(t *testing.T) {
	db := setupTestDB(t)
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.DefaultCost)
	u := models.User{Username: "alice", Email: "alice@test.local", Password: string(hash), Role: models.RoleDonor, UniqueID: "1234567890"}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	h := New(db, config.Config{}, nil)

	form := url.Values{"username": {"alice"}, "password": {"secret"}, "user_type": {"donor"}}
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" && c.Value != "" {
			session = c
		}
	}
	if session == nil {
		t.Fatal("expected session cookie")
	}

	if err := db.Delete(&models.User{}, u.ID).Error; err != nil {
		t.Fatalf("delete user: %v", err)
	}

	r2 := httptest.NewRequest(http.MethodGet, "/donor/dashboard", nil)
	r2.AddCookie(session)
	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, r2)
	if w2.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect for vanished user, got %d", w2.Code)
	}
	cleared := false
	for _, c := range w2.Result().Cookies() {
		if c.Name == "session" && c.Value == "" {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("expected stale session cookie to be cleared")
	}
}
