package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/securecookie"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"eventdesk/internal/api"
	"eventdesk/internal/storage"
	"eventdesk/internal/wizard"
	"eventdesk/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeBackend answers every endpoint with a canned body, defaulting to a bare
// success envelope, and keeps the last request body per path.
type fakeBackend struct {
	mu        sync.Mutex
	responses map[string]string
	statuses  map[string]int
	bodies    map[string][]byte
}

func (b *fakeBackend) respond(path, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.responses[path] = body
}

func (b *fakeBackend) fail(path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.responses[path] = body
	b.statuses[path] = status
}

func (b *fakeBackend) body(path string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.bodies[path]
	return data, ok
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)

	b.mu.Lock()
	b.bodies[r.URL.Path] = data
	resp, ok := b.responses[r.URL.Path]
	status := b.statuses[r.URL.Path]
	b.mu.Unlock()

	if !ok {
		resp = `{"status":"success"}`
	}
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_, _ = io.WriteString(w, resp)
}

type testEnv struct {
	service *Service
	backend *fakeBackend
	drafts  *storage.MemoryDrafts
}

func testConfig() *types.Config {
	return &types.Config{
		APITimeoutSec:     5,
		CSRFCookieName:    "csrftoken",
		WizardVariant:     "rich",
		AuthTokenCheck:    "presence",
		SessionMaxAgeSec:  3600,
		CookieHashKey:     base64.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(64)),
		CookieBlockKey:    base64.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)),
		GSTRate:           0.18,
		ProcessingFeeRate: 0.05,
		TokenUnitPrice:    5,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	backend := &fakeBackend{responses: map[string]string{}, statuses: map[string]int{}, bodies: map[string][]byte{}}
	srv := httptest.NewServer(backend)

	client := api.NewWithHTTPClient(srv.URL, srv.Client(), logger)
	t.Cleanup(func() {
		client.CloseIdleConnections()
		srv.Close()
	})

	config := testConfig()
	cookies, err := storage.NewCookieJar(config, logger)
	require.NoError(t, err)

	drafts := storage.NewMemoryDrafts()
	s, err := New(config, logger, client, cookies, drafts, nil, nil)
	require.NoError(t, err)

	return &testEnv{service: s, backend: backend, drafts: drafts}
}

var testUser = &types.User{UserID: 7, Name: "Asha", Email: "asha@example.com", PhoneNumber: "9876543210"}

// signIn returns the cookies of a stored session for testUser.
func (e *testEnv) signIn(t *testing.T) []*http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	user := *testUser
	require.NoError(t, e.service.cookies.SetSession(rec, &types.Session{Token: "tok", User: &user}))
	return rec.Result().Cookies()
}

func (e *testEnv) do(req *http.Request, cookies []*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.service.Handler().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) get(path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil), cookies)
}

func (e *testEnv) post(path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req, cookies)
}

func location(t *testing.T, rec *httptest.ResponseRecorder) *url.URL {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, rec.Code)
	u, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	return u
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestProtectedPageRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get("/events?tab=past", nil)

	loc := location(t, rec)
	assert.Equal(t, "/login", loc.Path)
	assert.Equal(t, "/events?tab=past", loc.Query().Get("next"))

	remembered := cookieNamed(rec, storage.KeyRedirect)
	require.NotNil(t, remembered)
	assert.Equal(t, "/events?tab=past", mustUnescape(t, remembered.Value))
}

func mustUnescape(t *testing.T, s string) string {
	t.Helper()
	out, err := url.QueryUnescape(s)
	require.NoError(t, err)
	return out
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.get("/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Len(t, rec.Header().Get("X-Request-Id"), 20)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "abc123")
	rec = env.do(req, nil)
	assert.Equal(t, "abc123", rec.Header().Get("X-Request-Id"))
}

func TestTrailingSlashIsStripped(t *testing.T) {
	env := newTestEnv(t)
	rec := env.get("/login/", nil)
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestLoginRendersForm(t *testing.T) {
	env := newTestEnv(t)
	env.backend.respond("/events/login.php", `{"csrf_token":"abc"}`)

	rec := env.get("/login?next=%2Fforms", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="next" value="/forms"`)
	csrf := cookieNamed(rec, "csrftoken")
	require.NotNil(t, csrf)
	assert.Equal(t, "abc", csrf.Value)
}

func TestLoginFlowFollowsNext(t *testing.T) {
	env := newTestEnv(t)
	env.backend.respond("/events/login.php", `{"status":"success","token":"tok","user":{"user_id":7,"name":"Asha","email":"asha@example.com"}}`)

	rec := env.post("/login", url.Values{
		"email":    {"asha@example.com"},
		"password": {"secret123"},
		"next":     {"/forms"},
	}, nil)

	assert.Equal(t, "/forms", location(t, rec).Path)
	require.NotNil(t, cookieNamed(rec, storage.KeySession))

	token := cookieNamed(rec, storage.KeyAuthToken)
	require.NotNil(t, token)
	assert.Equal(t, "tok", token.Value)
}

func TestLoginIgnoresExternalNext(t *testing.T) {
	env := newTestEnv(t)
	env.backend.respond("/events/login.php", `{"status":"success","token":"tok","user":{"user_id":7}}`)

	rec := env.post("/login", url.Values{
		"email":    {"asha@example.com"},
		"password": {"secret123"},
		"next":     {"//evil.example"},
	}, nil)

	assert.Equal(t, "/dashboard", location(t, rec).Path)
}

func TestLoginValidatesBeforeCallingBackend(t *testing.T) {
	env := newTestEnv(t)

	rec := env.post("/login", url.Values{"email": {"not-an-email"}, "password": {"short"}}, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Invalid email format")
	assert.Contains(t, body, "Password must be at least 8 characters")

	_, called := env.backend.body("/events/login.php")
	assert.False(t, called)
}

func TestLoginShowsBackendMessage(t *testing.T) {
	env := newTestEnv(t)
	env.backend.respond("/events/login.php", `{"status":"error","message":"Invalid credentials"}`)

	rec := env.post("/login", url.Values{"email": {"asha@example.com"}, "password": {"secret123"}}, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")
	assert.Nil(t, cookieNamed(rec, storage.KeySession))
}

func TestLogoutClearsSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.post("/logout", url.Values{}, env.signIn(t))

	assert.Equal(t, "/login", location(t, rec).Path)
	session := cookieNamed(rec, storage.KeySession)
	require.NotNil(t, session)
	assert.Less(t, session.MaxAge, 0)
}

func TestRejectedTokenEndsSession(t *testing.T) {
	env := newTestEnv(t)
	env.backend.fail("/events/get_events.php", http.StatusUnauthorized, `{"status":"error","message":"Invalid token"}`)

	rec := env.get("/events", env.signIn(t))

	loc := location(t, rec)
	assert.Equal(t, "/login", loc.Path)
	assert.Equal(t, "/events", loc.Query().Get("next"))
	session := cookieNamed(rec, storage.KeySession)
	require.NotNil(t, session)
	assert.Less(t, session.MaxAge, 0)
}

// forgedMirror imitates the plain cookies a script could write for userID.
func forgedMirror(userID int64) []*http.Cookie {
	return []*http.Cookie{
		{Name: storage.KeyAuthToken, Value: "forged"},
		{Name: storage.KeyUser, Value: url.QueryEscape(fmt.Sprintf(`{"user_id":%d}`, userID))},
	}
}

func TestMirroredCookiesDoNotOpenAnotherUsersWizard(t *testing.T) {
	env := newTestEnv(t)
	env.post("/create-event", url.Values{
		"action":            {"stay"},
		"values[eventType]": {"paid"},
	}, env.signIn(t))

	forged := forgedMirror(testUser.UserID)

	rec := env.get("/create-event", forged)
	loc := location(t, rec)
	assert.Equal(t, "/login", loc.Path)
	assert.Equal(t, "/create-event", loc.Query().Get("next"))
	assert.NotContains(t, rec.Body.String(), "paid")

	rec = env.get("/login", forged)
	assert.Equal(t, http.StatusOK, rec.Code)

	env.post("/logout", url.Values{}, forged)
	env.service.wizards.mu.Lock()
	_, kept := env.service.wizards.sessions[testUser.UserID]
	env.service.wizards.mu.Unlock()
	assert.True(t, kept)
}

func TestDashboardPopupShownOnce(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.signIn(t)

	rec := env.get("/dashboard", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Welcome, Asha!")

	popup := cookieNamed(rec, storage.KeyPopupShown)
	require.NotNil(t, popup)

	rec = env.get("/dashboard", append(cookies, popup))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Welcome, Asha!")
}

func TestWizardAdvanceShowsValidationErrors(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.signIn(t)

	rec := env.post("/create-event", url.Values{"action": {"next"}}, cookies)

	loc := location(t, rec)
	assert.Equal(t, "/create-event", loc.Path)
	assert.Equal(t, "Please fix the highlighted fields.", loc.Query().Get("error"))

	rec = env.get(loc.RequestURI(), cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Event type is required")
}

func TestWizardAdvanceSavesDraft(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.signIn(t)

	rec := env.post("/create-event", url.Values{
		"action":            {"next"},
		"values[eventType]": {"paid"},
	}, cookies)

	assert.Equal(t, "/create-event", location(t, rec).Path)
	require.NotNil(t, cookieNamed(rec, storage.KeyEventDraft))

	snap, err := env.drafts.LoadDraft(context.Background(), testUser.UserID)
	require.NoError(t, err)
	assert.Equal(t, wizard.StepEventDetails, snap.State.Step)
	assert.Equal(t, "paid", snap.State.Values.Get(wizard.FieldEventType))

	rec = env.get("/create-event", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h2>Event Details</h2>")
}

func TestWizardIgnoresFieldsOfOtherSteps(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.signIn(t)

	env.post("/create-event", url.Values{
		"action":            {"stay"},
		"values[eventType]": {"free"},
		"values[eventName]": {"Sneaky"},
	}, cookies)

	snap, err := env.drafts.LoadDraft(context.Background(), testUser.UserID)
	require.NoError(t, err)
	assert.Equal(t, "free", snap.State.Values.Get(wizard.FieldEventType))
	assert.Empty(t, snap.State.Values.Get(wizard.FieldEventName))
}

func TestWizardUnknownActionIsRefused(t *testing.T) {
	env := newTestEnv(t)

	rec := env.post("/create-event", url.Values{"action": {"explode"}}, env.signIn(t))

	assert.Equal(t, api.GenericMessage, location(t, rec).Query().Get("error"))
}

func TestWizardDiscardClearsDraft(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.signIn(t)

	env.post("/create-event", url.Values{"action": {"next"}, "values[eventType]": {"free"}}, cookies)
	rec := env.post("/create-event", url.Values{"action": {"discard"}}, cookies)

	assert.Equal(t, "Draft discarded.", location(t, rec).Query().Get("notice"))
	marker := cookieNamed(rec, storage.KeyEventDraft)
	require.NotNil(t, marker)
	assert.Less(t, marker.MaxAge, 0)

	_, err := env.drafts.LoadDraft(context.Background(), testUser.UserID)
	assert.ErrorIs(t, err, types.ErrDraftNotFound)
}

func TestBrandingUploadWithoutBucket(t *testing.T) {
	env := newTestEnv(t)

	rec := env.post("/create-event/branding", url.Values{}, env.signIn(t))

	assert.Equal(t, "Branding uploads are not configured.", location(t, rec).Query().Get("error"))
}

func TestTokenPurchase(t *testing.T) {
	env := newTestEnv(t)
	env.backend.respond("/events/add_tokens.php", `{"status":"success","purchase_id":12}`)

	rec := env.post("/tokens", url.Values{"tokens": {"10"}, "action": {"buy"}}, env.signIn(t))

	assert.Equal(t, "Successfully purchased 10 tokens!", location(t, rec).Query().Get("notice"))

	body, ok := env.backend.body("/events/add_tokens.php")
	require.True(t, ok)
	var purchase types.TokenPurchase
	require.NoError(t, json.Unmarshal(body, &purchase))
	assert.Equal(t, types.TokenPurchase{UserID: 7, Tokens: 10, Subtotal: 50, GST: 9, Total: 59}, purchase)
}

func TestTokenPurchaseRejectsBadCount(t *testing.T) {
	env := newTestEnv(t)

	rec := env.post("/tokens", url.Values{"tokens": {"-3"}, "action": {"buy"}}, env.signIn(t))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please enter a positive integer")
	_, called := env.backend.body("/events/add_tokens.php")
	assert.False(t, called)
}

func TestTokensPageShowsMetrics(t *testing.T) {
	env := newTestEnv(t)
	env.backend.respond("/events/get_token_metrics.php", `{"status":"success","metrics":{"total":120,"remaining":80,"purchased":100,"used":40}}`)
	env.backend.respond("/events/get_token_history.php", `{"status":"success","history":[{"id":1,"date":"2025-01-02","tokens":100,"subtotal":500,"gst":90,"total":590,"status":"Completed"}]}`)

	rec := env.get("/tokens", env.signIn(t))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h3>120</h3>")
	assert.Contains(t, body, "2025-01-02")
	assert.Contains(t, body, "Completed")
}

func TestTokensPageKeepsHistoryWhenMetricsFail(t *testing.T) {
	env := newTestEnv(t)
	env.backend.respond("/events/get_token_metrics.php", `{"status":"error","message":"Metrics are being recalculated"}`)
	env.backend.respond("/events/get_token_history.php", `{"status":"success","history":[{"id":1,"date":"2025-01-02","tokens":100,"subtotal":500,"gst":90,"total":590,"status":"Completed"}]}`)

	rec := env.get("/tokens", env.signIn(t))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Metrics are being recalculated")
	assert.Contains(t, body, "2025-01-02")
}

func TestAddVolunteerValidation(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.signIn(t)

	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{
			name: "missing email",
			form: url.Values{"event_id": {"3"}, "volunteer.name": {"Ravi"}},
			want: "Please enter name and email",
		},
		{
			name: "bad email",
			form: url.Values{"event_id": {"3"}, "volunteer.name": {"Ravi"}, "volunteer.email": {"ravi@"}},
			want: "Invalid email format",
		},
		{
			name: "short password",
			form: url.Values{"event_id": {"3"}, "volunteer.name": {"Ravi"}, "volunteer.email": {"ravi@example.com"}, "volunteer.password": {"short"}},
			want: "Password must be at least 8 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.post("/volunteers", tt.form, cookies)
			assert.Equal(t, tt.want, location(t, rec).Query().Get("error"))
		})
	}

	_, called := env.backend.body("/events/add_volunteer.php")
	assert.False(t, called)
}

func TestAddVolunteer(t *testing.T) {
	env := newTestEnv(t)
	env.backend.respond("/events/add_volunteer.php", `{"status":"success","volunteer_id":31}`)

	rec := env.post("/volunteers", url.Values{
		"event_id":        {"3"},
		"volunteer.name":  {" Ravi "},
		"volunteer.email": {"ravi@example.com"},
	}, env.signIn(t))

	assert.Equal(t, "Volunteer added.", location(t, rec).Query().Get("notice"))

	body, ok := env.backend.body("/events/add_volunteer.php")
	require.True(t, ok)
	var got types.VolunteerAssignment
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, types.VolunteerAssignment{
		EventID: 3,
		Volunteer: types.Volunteer{
			Name:  "Ravi",
			Email: "ravi@example.com",
			Level: types.VolunteerLevelBeginner,
			Sent:  true,
		},
	}, got)
}

func TestRemoveVolunteer(t *testing.T) {
	env := newTestEnv(t)

	rec := env.post("/volunteers/remove", url.Values{
		"event_id":     {"3"},
		"volunteer_id": {"31"},
		"email":        {"ravi@example.com"},
	}, env.signIn(t))

	assert.Equal(t, "Volunteer removed.", location(t, rec).Query().Get("notice"))

	body, ok := env.backend.body("/events/remove_volunteer.php")
	require.True(t, ok)
	var got types.VolunteerRemoval
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, types.VolunteerRemoval{EventID: 3, VolunteerID: 31, Email: "ravi@example.com"}, got)
}

func TestUpdateFormFields(t *testing.T) {
	env := newTestEnv(t)

	rec := env.post("/forms/5/fields", url.Values{"fields": {" Name ", "", "Email"}}, env.signIn(t))

	assert.Equal(t, "Form fields updated.", location(t, rec).Query().Get("notice"))

	body, ok := env.backend.body("/events/update_form_data.php")
	require.True(t, ok)
	var got types.FormFieldsUpdate
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, types.FormFieldsUpdate{FormID: 5, Fields: []string{"Name", "Email"}}, got)
}

func TestUpdateFormFieldsRejectsAllBlank(t *testing.T) {
	env := newTestEnv(t)

	rec := env.post("/forms/5/fields", url.Values{"fields": {" ", ""}}, env.signIn(t))

	assert.Equal(t, "At least one field must have a non-empty label", location(t, rec).Query().Get("error"))
	_, called := env.backend.body("/events/update_form_data.php")
	assert.False(t, called)
}

func TestUpdateFormFieldsUnknownForm(t *testing.T) {
	env := newTestEnv(t)

	rec := env.post("/forms/abc/fields", url.Values{"fields": {"Name"}}, env.signIn(t))

	assert.Equal(t, "Form not found.", location(t, rec).Query().Get("error"))
	_, called := env.backend.body("/events/update_form_data.php")
	assert.False(t, called)
}

func TestSupportRequiresTitleAndDescription(t *testing.T) {
	env := newTestEnv(t)

	rec := env.post("/support", url.Values{"title": {"Broken"}}, env.signIn(t))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Description is required")
	_, called := env.backend.body("/events/submit_support.php")
	assert.False(t, called)
}

func TestSubmitSupportTicket(t *testing.T) {
	env := newTestEnv(t)

	rec := env.post("/support", url.Values{"title": {"Broken"}, "description": {"The forms page is empty"}}, env.signIn(t))

	assert.Equal(t, "Issue submitted successfully!", location(t, rec).Query().Get("notice"))

	body, ok := env.backend.body("/events/submit_support.php")
	require.True(t, ok)
	var got types.SupportTicketInput
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, types.SupportTicketInput{UserID: 7, Title: "Broken", Description: "The forms page is empty"}, got)
}

func TestUpdateProfileRewritesSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.post("/profile", url.Values{
		"user_id":      {"99"},
		"name":         {"Asha Rao"},
		"email":        {"asha@example.com"},
		"phone_number": {"9876543210"},
		"city":         {"Pune"},
	}, env.signIn(t))

	assert.Equal(t, "Profile updated successfully!", location(t, rec).Query().Get("notice"))

	body, ok := env.backend.body("/events/update_user.php")
	require.True(t, ok)
	var got types.User
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, "Asha Rao", got.Name)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	session, ok := env.service.cookies.Session(req)
	require.True(t, ok)
	assert.Equal(t, "Asha Rao", session.User.Name)
	assert.Equal(t, "tok", session.Token)
}

func TestUpdateProfileValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.post("/profile", url.Values{"email": {"nope"}}, env.signIn(t))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Name is required")
	assert.Contains(t, body, "Invalid email format")
	assert.Contains(t, body, "Phone number is required")
}

func TestNewRejectsJWKSWithoutURL(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	config := testConfig()
	config.AuthTokenCheck = "jwks"

	cookies, err := storage.NewCookieJar(config, logger)
	require.NoError(t, err)

	_, err = New(config, logger, nil, cookies, nil, nil, nil)
	assert.Error(t, err)
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewBuilder().Subject("7").Expiration(exp).Build()
	require.NoError(t, err)

	key, err := jwk.Import([]byte("test-signing-secret-of-enough-length"))
	require.NoError(t, err)

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256(), key))
	require.NoError(t, err)
	return string(signed)
}

func TestCheckToken(t *testing.T) {
	valid := signedToken(t, time.Now().Add(time.Hour))
	expired := signedToken(t, time.Now().Add(-time.Hour))

	tests := []struct {
		name    string
		check   TokenCheck
		token   string
		wantErr bool
	}{
		{name: "presence accepts opaque token", check: TokenCheckPresence, token: "opaque"},
		{name: "presence accepts expired jwt", check: TokenCheckPresence, token: expired},
		{name: "expiry accepts live jwt", check: TokenCheckExpiry, token: valid},
		{name: "expiry rejects expired jwt", check: TokenCheckExpiry, token: expired, wantErr: true},
		{name: "expiry rejects opaque token", check: TokenCheckExpiry, token: "opaque", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Service{tokenCheck: tt.check}
			err := s.checkToken(context.Background(), tt.token)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestParseTokenCheck(t *testing.T) {
	for in, want := range map[string]TokenCheck{
		"":         TokenCheckPresence,
		"presence": TokenCheckPresence,
		" Expiry ": TokenCheckExpiry,
		"jwks":     TokenCheckJWKS,
	} {
		got, err := ParseTokenCheck(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseTokenCheck("signature")
	assert.Error(t, err)
}
