package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookhive-backend/internal/platform/auth"
	"bookhive-backend/internal/platform/db"
	"bookhive-backend/internal/platform/db/dbtest"
)

func TestRouter_EndToEnd(t *testing.T) {
	h := dbtest.Open(t)
	cfg := &db.Config{
		Mode:  db.ModeRelease,
		Auth:  db.AuthConfig{JWTSecret: "router-secret"},
		Loans: db.LoanConfig{PeriodDays: 14, DueSoonDays: 7, Timezone: "UTC"},
	}
	r := NewRouter(cfg, h, slog.New(slog.NewTextHandler(io.Discard, nil)))

	book := dbtest.SeedBook(t, h, "Solaris", 1)
	member := dbtest.SeedMember(t, h, "Kris")
	librarian := dbtest.SeedMember(t, h, "Snaut")

	token := func(id int64, role string) string {
		tok, err := auth.IssueToken([]byte(cfg.Auth.JWTSecret), id, role, time.Hour, time.Now())
		require.NoError(t, err)
		return "Bearer " + tok
	}
	call := func(method, path, authz, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}
	memberTok, libTok := token(member, auth.RoleMember), token(librarian, auth.RoleLibrarian)

	assert.Equal(t, http.StatusOK, call(http.MethodGet, "/healthz", "", "").Code)
	assert.Equal(t, http.StatusNotFound, call(http.MethodGet, "/nope", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(http.MethodGet, "/api/v1/loans", "", "").Code)

	w := call(http.MethodPost, "/api/v1/loans", memberTok, `{"book_id":`+strconv.FormatInt(book, 10)+`}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = call(http.MethodPost, "/api/v1/loans/"+strconv.FormatInt(created.ID, 10)+"/decision", libTok, `{"decision":"issued"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// listings: librarian only, except the caller's own loans
	assert.Equal(t, http.StatusForbidden, call(http.MethodGet, "/api/v1/loans", memberTok, "").Code)

	w = call(http.MethodGet, "/api/v1/loans?status=issued&q=sol", libTok, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page struct {
		Items []struct {
			ID         int64  `json:"id"`
			BookTitle  string `json:"book_title"`
			MemberName string `json:"member_name"`
		} `json:"items"`
		TotalPages int `json:"total_pages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Solaris", page.Items[0].BookTitle)
	assert.Equal(t, "Kris", page.Items[0].MemberName)
	assert.Equal(t, 1, page.TotalPages)

	assert.Equal(t, http.StatusBadRequest, call(http.MethodGet, "/api/v1/loans?status=lost", libTok, "").Code)

	w = call(http.MethodGet, "/api/v1/members/me/loans", memberTok, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"issued"`)

	assert.Equal(t, http.StatusOK, call(http.MethodGet, "/api/v1/members/"+strconv.FormatInt(member, 10)+"/loans", libTok, "").Code)
	assert.Equal(t, http.StatusOK, call(http.MethodGet, "/api/v1/loans/active", libTok, "").Code)

	w = call(http.MethodGet, "/api/v1/loans/due?horizon=14", libTok, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"horizon_days":14`)
	assert.Equal(t, http.StatusBadRequest, call(http.MethodGet, "/api/v1/loans/due?horizon=-1", libTok, "").Code)
}

func TestTokenCommand(t *testing.T) {
	path := t.TempDir() + "/config.yaml"
	require.NoError(t, writeFile(path, "database: {driver: sqlite3, path: x.db}\nauth: {jwt_secret: cli-secret}\n"))

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", path, "token", "--sub", "5", "--role", "librarian"})
	require.NoError(t, cmd.Execute())

	claims, err := auth.ParseToken([]byte("cli-secret"), string(bytes.TrimSpace(out.Bytes())))
	require.NoError(t, err)
	sub, err := claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "5", sub)
	assert.Equal(t, auth.RoleLibrarian, claims["role"])

	cmd = NewRootCommand()
	cmd.SetArgs([]string{"--config", path, "token", "--sub", "5", "--role", "admin"})
	assert.Error(t, cmd.Execute())
}

func TestMigrateCommand(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.yaml"
	require.NoError(t, writeFile(path, "database: {driver: sqlite3, path: "+dir+"/m.db}\n"))

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--config", path, "migrate"})
	require.NoError(t, cmd.Execute())
}
