package routes

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"staybook/config"
	"staybook/logger"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/goccy/go-json"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type envelope struct {
	Code   int                 `json:"code"`
	Kind   string              `json:"kind"`
	Mess   string              `json:"mess"`
	Data   json.RawMessage     `json:"data"`
	Fields map[string][]string `json:"fields"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:     "0123456789abcdef0123456789abcdef",
		TokenTTLHours: 1,
	}

	router := gin.New()
	SetupRoutes(router, cfg, db, nil, nil, logger.Discard())
	return &testServer{t: t, router: router}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) expect(w *httptest.ResponseRecorder, status int) {
	s.t.Helper()
	if w.Code != status {
		s.t.Fatalf("status %d, want %d: %s", w.Code, status, w.Body.String())
	}
}

// expectKind checks both the status and the machine-readable error kind.
func (s *testServer) expectKind(w *httptest.ResponseRecorder, status int, kind string) {
	s.t.Helper()
	s.expect(w, status)
	if env := decode[envelope](s.t, w); env.Code != 0 || env.Kind != kind {
		s.t.Fatalf("kind %q code %d, want %q: %s", env.Kind, env.Code, kind, w.Body.String())
	}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return out
}

func data[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	env := decode[envelope](t, w)
	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
	return out
}

// signup registers and logs in a user, returning their token.
func (s *testServer) signup(name string) string {
	s.t.Helper()

	email := strings.ToLower(name) + "@example.com"
	s.expect(s.do(http.MethodPost, "/register", "", gin.H{"name": name, "email": email, "password": "secret1"}), http.StatusCreated)

	w := s.do(http.MethodPost, "/login", "", gin.H{"email": email, "password": "secret1"})
	s.expect(w, http.StatusOK)

	login := data[struct {
		Token string `json:"token"`
	}](s.t, w)
	if login.Token == "" {
		s.t.Fatal("login returned no token")
	}
	return login.Token
}

type idOnly struct {
	ID uint `json:"id"`
}

func TestBookingAndReviewFlow(t *testing.T) {
	s := newTestServer(t)
	host := s.signup("Host")
	guest := s.signup("Guest")
	stranger := s.signup("Stranger")

	w := s.do(http.MethodPost, "/places", host, gin.H{"title": "Lake cabin", "address": "1 Shore Rd", "maxGuests": 4, "price": 100})
	s.expect(w, http.StatusCreated)
	place := data[idOnly](t, w)

	booking := gin.H{"place": place.ID, "checkIn": "2024-06-01", "checkOut": "2024-06-03", "numOfGuests": 4, "name": "Guest", "phone": "555-0100"}
	w = s.do(http.MethodPost, "/bookings", guest, booking)
	s.expect(w, http.StatusCreated)
	created := data[struct {
		ID     uint    `json:"id"`
		Price  float64 `json:"price"`
		Status string  `json:"status"`
	}](t, w)
	if created.Price != 200 || created.Status != "pending" {
		t.Fatalf("booking %+v", created)
	}

	booking["numOfGuests"] = 5
	w = s.do(http.MethodPost, "/bookings", guest, booking)
	s.expectKind(w, http.StatusBadRequest, "validation")
	if env := decode[envelope](t, w); len(env.Fields["numOfGuests"]) == 0 {
		t.Errorf("fields %v", env.Fields)
	}

	review := gin.H{"booking": created.ID, "cleanliness": 5, "accuracy": 5, "checkIn": 5, "communication": 5, "location": 5, "value": 5, "comment": "Great stay"}
	s.expectKind(s.do(http.MethodPost, "/review", guest, review), http.StatusUnprocessableEntity, "not_eligible")

	statusPath := fmt.Sprintf("/bookings/%d/status", created.ID)
	s.expectKind(s.do(http.MethodPut, statusPath, guest, gin.H{"status": "confirmed"}), http.StatusForbidden, "forbidden")
	s.expect(s.do(http.MethodPut, statusPath, host, gin.H{"status": "confirmed"}), http.StatusOK)
	s.expect(s.do(http.MethodPut, statusPath, host, gin.H{"status": "completed"}), http.StatusOK)
	s.expectKind(s.do(http.MethodPut, statusPath, guest, gin.H{"status": "canceled"}), http.StatusConflict, "invalid_transition")

	w = s.do(http.MethodPost, "/review", guest, review)
	s.expect(w, http.StatusCreated)
	posted := decode[struct {
		Message string `json:"message"`
		Review  idOnly `json:"review"`
	}](t, w)
	if posted.Message == "" || posted.Review.ID == 0 {
		t.Fatalf("review response %s", w.Body.String())
	}

	updatePath := fmt.Sprintf("/review/%d/update", posted.Review.ID)
	s.expect(s.do(http.MethodPut, updatePath, stranger, review), http.StatusForbidden)

	review["comment"] = "Still great"
	w = s.do(http.MethodPut, updatePath, guest, review)
	s.expect(w, http.StatusOK)
	updated := decode[struct {
		Message       string `json:"message"`
		UpdatedReview struct {
			Comment string `json:"comment"`
		} `json:"updatedReview"`
	}](t, w)
	if updated.UpdatedReview.Comment != "Still great" {
		t.Errorf("updated review %s", w.Body.String())
	}

	w = s.do(http.MethodGet, fmt.Sprintf("/places/%d/reviews", place.ID), "", nil)
	s.expect(w, http.StatusOK)
	summary := data[struct {
		Rating *float64 `json:"rating"`
		Count  int      `json:"count"`
	}](t, w)
	if summary.Rating == nil || *summary.Rating != 5 || summary.Count != 1 {
		t.Errorf("place reviews %s", w.Body.String())
	}

	s.expectKind(s.do(http.MethodGet, fmt.Sprintf("/places/%d/reviews", place.ID+100), "", nil), http.StatusNotFound, "not_found")

	w = s.do(http.MethodGet, fmt.Sprintf("/places/%d", place.ID), "", nil)
	s.expect(w, http.StatusOK)
	detail := data[struct {
		Rating      *float64 `json:"rating"`
		ReviewCount int      `json:"reviewCount"`
	}](t, w)
	if detail.Rating == nil || *detail.Rating != 5 || detail.ReviewCount != 1 {
		t.Errorf("place detail %s", w.Body.String())
	}

	w = s.do(http.MethodGet, "/bookings", guest, nil)
	s.expect(w, http.StatusOK)
	mine := data[[]struct {
		ID    uint `json:"id"`
		Place struct {
			Title string `json:"title"`
		} `json:"place"`
	}](t, w)
	if len(mine) != 1 || mine[0].Place.Title != "Lake cabin" {
		t.Errorf("guest bookings %s", w.Body.String())
	}
}

func TestPlaceOwnership(t *testing.T) {
	s := newTestServer(t)
	host := s.signup("Host")
	stranger := s.signup("Stranger")

	w := s.do(http.MethodPost, "/places", host, gin.H{"title": "Loft", "maxGuests": 2, "price": 50})
	s.expect(w, http.StatusCreated)
	place := data[idOnly](t, w)

	s.expect(s.do(http.MethodPut, "/places", stranger, gin.H{"id": place.ID, "title": "Mine now"}), http.StatusForbidden)
	s.expect(s.do(http.MethodPut, "/places", host, gin.H{"id": place.ID, "price": 75}), http.StatusOK)

	w = s.do(http.MethodGet, fmt.Sprintf("/places/%d", place.ID), "", nil)
	s.expect(w, http.StatusOK)
	got := data[struct {
		Title  string   `json:"title"`
		Price  float64  `json:"price"`
		Rating *float64 `json:"rating"`
	}](t, w)
	if got.Title != "Loft" || got.Price != 75 || got.Rating != nil {
		t.Errorf("place %s", w.Body.String())
	}

	w = s.do(http.MethodGet, "/user-places", stranger, nil)
	s.expect(w, http.StatusOK)
	if places := data[[]idOnly](t, w); len(places) != 0 {
		t.Errorf("stranger owns %d places", len(places))
	}

	s.expect(s.do(http.MethodDelete, fmt.Sprintf("/places/%d", place.ID), stranger, nil), http.StatusForbidden)
	s.expect(s.do(http.MethodDelete, fmt.Sprintf("/places/%d", place.ID), host, nil), http.StatusOK)
	s.expect(s.do(http.MethodGet, fmt.Sprintf("/places/%d", place.ID), "", nil), http.StatusNotFound)
	s.expect(s.do(http.MethodGet, "/places/abc", "", nil), http.StatusBadRequest)
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t)

	s.expectKind(s.do(http.MethodPost, "/bookings", "", gin.H{}), http.StatusUnauthorized, "unauthenticated")
	s.expect(s.do(http.MethodGet, "/profile", "garbage", nil), http.StatusUnauthorized)
	s.expect(s.do(http.MethodGet, "/places", "", nil), http.StatusOK)
	s.expect(s.do(http.MethodGet, "/health", "", nil), http.StatusOK)
	s.expect(s.do(http.MethodPost, "/login", "", gin.H{"email": "nobody@example.com", "password": "x"}), http.StatusUnauthorized)

	token := s.signup("Ana")
	s.expectKind(s.do(http.MethodPost, "/register", "", gin.H{"name": "Ana", "email": "ana@example.com", "password": "secret1"}), http.StatusConflict, "conflict")

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.expect(w, http.StatusOK)
	if profile := data[struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}](t, w); profile.Email != "ana@example.com" || profile.Password != "" {
		t.Errorf("profile %s", w.Body.String())
	}

	s.expectKind(s.do(http.MethodPost, "/upload-by-link", token, gin.H{"link": "https://img.example.com/a.png"}), http.StatusServiceUnavailable, "unavailable")
}
