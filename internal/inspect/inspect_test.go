package inspect

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, cancel func()) *Server {
	t.Helper()
	status := &Status{TaskID: "test-task"}
	status.DisjunctsTotal = 3
	srv, err := NewServer(status, "swordfish", cancel)
	require.NoError(t, err)
	return srv
}

func Test_Status_ReportsRunningTotals(t *testing.T) {
	assert := assert.New(t)
	srv := newTestServer(t, nil)

	srv.status.RecordDisjunct(10, 4, false)
	srv.status.RecordDisjunct(7, 2, true)

	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	assert.Equal(http.StatusOK, rec.Code)
	var got Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal("test-task", got.TaskID)
	assert.Equal(2, got.DisjunctsDone)
	assert.Equal(17, got.StatesExplored)
	assert.Equal(6, got.Transitions)
	assert.True(got.Truncated)
}

func Test_Login_RejectsWrongSecret(t *testing.T) {
	srv := newTestServer(t, nil)

	body := bytes.NewBufferString(`{"secret": "not-it"}`)
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", body))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func Test_Cancel_RequiresBearerToken(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/cancel", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func Test_LoginThenCancel_InvokesCancelFunc(t *testing.T) {
	assert := assert.New(t)

	cancelled := false
	srv := newTestServer(t, func() { cancelled = true })

	body := bytes.NewBufferString(`{"secret": "swordfish"}`)
	loginRec := httptest.NewRecorder()
	srv.Router.ServeHTTP(loginRec, httptest.NewRequest(http.MethodPost, "/login", body))
	require.Equal(t, http.StatusOK, loginRec.Code)

	var login loginResponse
	require.NoError(t, json.Unmarshal(loginRec.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)

	cancelReq := httptest.NewRequest(http.MethodDelete, "/cancel", nil)
	cancelReq.Header.Set("Authorization", "Bearer "+login.Token)
	cancelRec := httptest.NewRecorder()
	srv.Router.ServeHTTP(cancelRec, cancelReq)

	assert.Equal(http.StatusAccepted, cancelRec.Code)
	assert.True(cancelled)
	assert.True(srv.status.Snapshot().Cancelled)
}
