package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/claimflow/internal/attachment"
	"github.com/Veraticus/claimflow/internal/auth"
	"github.com/Veraticus/claimflow/internal/model"
	"github.com/Veraticus/claimflow/internal/storage"
	"github.com/Veraticus/claimflow/internal/workflow"
)

const testSecret = "test-secret"

type testServer struct {
	server   *Server
	store    *storage.SQLiteStorage
	employee *model.User
	other    *model.User
	manager  *model.User
	finance  *model.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tmpDir := t.TempDir()
	store, err := storage.NewSQLiteStorage(filepath.Join(tmpDir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))

	uploads, err := attachment.NewStore(filepath.Join(tmpDir, "uploads"))
	require.NoError(t, err)

	ts := &testServer{
		server: NewServer(workflow.New(store), store, uploads, testSecret, time.Hour),
		store:  store,
	}

	for _, u := range []struct {
		dst      **model.User
		username string
		role     model.Role
	}{
		{&ts.employee, "alice", model.RoleEmployee},
		{&ts.other, "bob", model.RoleEmployee},
		{&ts.manager, "mgr", model.RoleManager},
		{&ts.finance, "fin", model.RoleFinance},
	} {
		hash, hashErr := auth.HashPassword(u.username + "-password")
		require.NoError(t, hashErr)
		user := &model.User{
			Username:     u.username,
			PasswordHash: hash,
			FullName:     "Test " + u.username,
			Email:        u.username + "@example.com",
			Role:         u.role,
		}
		require.NoError(t, store.CreateUser(ctx, user))
		*u.dst = user
	}

	return ts
}

func (ts *testServer) token(t *testing.T, user *model.User) string {
	t.Helper()
	token, err := auth.IssueToken(user, testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func (ts *testServer) request(t *testing.T, method, path string, body any, user *model.User) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+ts.token(t, user))
	}

	w := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(w, req)
	return w
}

func (ts *testServer) createClaim(t *testing.T, employee *model.User, amount float64) model.Claim {
	t.Helper()
	w := ts.request(t, http.MethodPost, "/api/claims", gin.H{
		"title":             "Airport taxi",
		"description":       "Taxi for the client visit",
		"category":          "transport",
		"amount":            amount,
		"receipt_reference": "/uploads/20250115-103000-abcd1234.jpg",
	}, employee)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var claim model.Claim
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &claim))
	return claim
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.request(t, http.MethodGet, "/api/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	w := ts.request(t, http.MethodPost, "/api/login", gin.H{
		"username": "alice",
		"password": "alice-password",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string     `json:"token"`
		User  model.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.Username)

	// The token works against a protected route.
	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	pw := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(pw, req)
	assert.Equal(t, http.StatusOK, pw.Code)
}

func TestLoginBadCredentials(t *testing.T) {
	ts := newTestServer(t)

	for _, body := range []gin.H{
		{"username": "alice", "password": "wrong"},
		{"username": "nobody", "password": "whatever"},
	} {
		w := ts.request(t, http.MethodPost, "/api/login", body, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	w := ts.request(t, http.MethodGet, "/api/claims", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/claims", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestClaimLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	claim := ts.createClaim(t, ts.employee, 450000)
	assert.Equal(t, model.StatusPending, claim.Status)

	// Manager approves without notes.
	w := ts.request(t, http.MethodPost, fmt.Sprintf("/api/manager/claims/%d/decision", claim.ID),
		gin.H{"action": "approve"}, ts.manager)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Finance approves.
	w = ts.request(t, http.MethodPost, fmt.Sprintf("/api/finance/claims/%d/decision", claim.ID),
		gin.H{"action": "approve", "notes": "budget ok"}, ts.finance)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Finance marks paid.
	w = ts.request(t, http.MethodPost, fmt.Sprintf("/api/finance/claims/%d/paid", claim.ID), nil, ts.finance)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var paid model.Claim
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &paid))
	assert.Equal(t, model.StatusCompleted, paid.Status)

	// The employee's stats now include the amount.
	w = ts.request(t, http.MethodGet, "/api/claims/stats", nil, ts.employee)
	require.Equal(t, http.StatusOK, w.Code)
	var stats model.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalApproved)
	assert.Equal(t, float64(450000), stats.TotalAmount)
}

func TestErrorStatusMapping(t *testing.T) {
	ts := newTestServer(t)

	claim := ts.createClaim(t, ts.employee, 100)

	// Reject without notes: validation, 400.
	w := ts.request(t, http.MethodPost, fmt.Sprintf("/api/manager/claims/%d/decision", claim.ID),
		gin.H{"action": "reject"}, ts.manager)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown claim: 404.
	w = ts.request(t, http.MethodPost, "/api/manager/claims/99999/decision",
		gin.H{"action": "approve"}, ts.manager)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Reject with a reason.
	w = ts.request(t, http.MethodPost, fmt.Sprintf("/api/manager/claims/%d/decision", claim.ID),
		gin.H{"action": "reject", "notes": "duplicate submission"}, ts.manager)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Acting on a terminal claim: illegal transition, 422.
	w = ts.request(t, http.MethodPost, fmt.Sprintf("/api/finance/claims/%d/decision", claim.ID),
		gin.H{"action": "approve"}, ts.finance)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Deleting a non-pending claim: 422 as well.
	w = ts.request(t, http.MethodDelete, fmt.Sprintf("/api/claims/%d", claim.ID), nil, ts.employee)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRoleRouteGating(t *testing.T) {
	ts := newTestServer(t)

	claim := ts.createClaim(t, ts.employee, 100)
	decision := gin.H{"action": "approve"}

	// Employees cannot reach decision routes at all.
	w := ts.request(t, http.MethodPost, fmt.Sprintf("/api/manager/claims/%d/decision", claim.ID), decision, ts.employee)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Finance cannot use the manager route, and vice versa.
	w = ts.request(t, http.MethodPost, fmt.Sprintf("/api/manager/claims/%d/decision", claim.ID), decision, ts.finance)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = ts.request(t, http.MethodPost, fmt.Sprintf("/api/finance/claims/%d/decision", claim.ID), decision, ts.manager)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Managers cannot create claims.
	w = ts.request(t, http.MethodPost, "/api/claims", gin.H{
		"title": "t", "description": "d", "category": "meals",
		"amount": 1, "receipt_reference": "/uploads/x.jpg",
	}, ts.manager)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Employees cannot list users.
	w = ts.request(t, http.MethodGet, "/api/users", nil, ts.employee)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = ts.request(t, http.MethodGet, "/api/users", nil, ts.finance)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestClaimVisibility(t *testing.T) {
	ts := newTestServer(t)

	mine := ts.createClaim(t, ts.employee, 10)
	ts.createClaim(t, ts.other, 20)

	// Employee list is scoped to their own claims.
	w := ts.request(t, http.MethodGet, "/api/claims", nil, ts.employee)
	require.Equal(t, http.StatusOK, w.Code)
	var claims []model.Claim
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &claims))
	require.Len(t, claims, 1)
	assert.Equal(t, ts.employee.ID, claims[0].EmployeeID)

	// Manager sees everything.
	w = ts.request(t, http.MethodGet, "/api/claims", nil, ts.manager)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &claims))
	assert.Len(t, claims, 2)

	// A foreign employee cannot fetch the claim directly.
	w = ts.request(t, http.MethodGet, fmt.Sprintf("/api/claims/%d", mine.ID), nil, ts.other)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The owner gets the claim plus their allowed actions (none while pending).
	w = ts.request(t, http.MethodGet, fmt.Sprintf("/api/claims/%d", mine.ID), nil, ts.employee)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Claim          model.Claim    `json:"claim"`
		AllowedActions []model.Action `json:"allowed_actions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, mine.ID, detail.Claim.ID)
	assert.Empty(t, detail.AllowedActions)

	// The manager's detail view offers approve and reject.
	w = ts.request(t, http.MethodGet, fmt.Sprintf("/api/claims/%d", mine.ID), nil, ts.manager)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.ElementsMatch(t, []model.Action{model.ActionApprove, model.ActionReject}, detail.AllowedActions)
}

func TestQueues(t *testing.T) {
	ts := newTestServer(t)

	first := ts.createClaim(t, ts.employee, 10)
	second := ts.createClaim(t, ts.other, 20)

	// Both pending claims sit in the manager queue.
	w := ts.request(t, http.MethodGet, "/api/manager/queue", nil, ts.manager)
	require.Equal(t, http.StatusOK, w.Code)
	var claims []model.Claim
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &claims))
	assert.Len(t, claims, 2)

	// Approve one; it moves from the manager queue to the finance queue.
	w = ts.request(t, http.MethodPost, fmt.Sprintf("/api/manager/claims/%d/decision", first.ID),
		gin.H{"action": "approve"}, ts.manager)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.request(t, http.MethodGet, "/api/manager/queue", nil, ts.manager)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &claims))
	require.Len(t, claims, 1)
	assert.Equal(t, second.ID, claims[0].ID)

	w = ts.request(t, http.MethodGet, "/api/finance/queue", nil, ts.finance)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &claims))
	require.Len(t, claims, 1)
	assert.Equal(t, first.ID, claims[0].ID)
}

func TestCreateClaimValidationOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	// Amount 0 fails binding with 400 and persists nothing.
	w := ts.request(t, http.MethodPost, "/api/claims", gin.H{
		"title": "t", "description": "d", "category": "transport",
		"amount": 0, "receipt_reference": "/uploads/x.jpg",
	}, ts.employee)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// A malformed receipt reference passes binding but fails the engine.
	w = ts.request(t, http.MethodPost, "/api/claims", gin.H{
		"title": "t", "description": "d", "category": "transport",
		"amount": 10, "receipt_reference": "not-a-reference",
	}, ts.employee)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.request(t, http.MethodGet, "/api/claims", nil, ts.employee)
	require.Equal(t, http.StatusOK, w.Code)
	var claims []model.Claim
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &claims))
	assert.Empty(t, claims)
}

func TestUploadReceipt(t *testing.T) {
	ts := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("receipt", "lunch.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/uploads/receipt", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+ts.token(t, ts.employee))

	w := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Reference string `json:"reference"`
		Filename  string `json:"filename"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Reference)

	// The returned reference is accepted verbatim by claim creation.
	cw := ts.request(t, http.MethodPost, "/api/claims", gin.H{
		"title": "Team lunch", "description": "d", "category": "meals",
		"amount": 30, "receipt_reference": resp.Reference,
	}, ts.employee)
	assert.Equal(t, http.StatusCreated, cw.Code, cw.Body.String())
}

func TestUploadReceiptRejectsBadFiles(t *testing.T) {
	ts := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("receipt", "malware.exe")
	require.NoError(t, err)
	_, err = part.Write([]byte("nope"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/uploads/receipt", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+ts.token(t, ts.employee))

	w := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
