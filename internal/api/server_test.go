package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/practice-fund/internal/auth"
	"github.com/Spok95/practice-fund/internal/ledger"
	"github.com/Spok95/practice-fund/internal/models"
	"github.com/Spok95/practice-fund/internal/recompute"
	"github.com/Spok95/practice-fund/internal/rules"
)

// fakeFund запоминает последний вызов и отвечает заданной ошибкой.
type fakeFund struct {
	err     error
	cap     *auth.Capability
	day     recompute.DayInput
	patch   recompute.SessionPatch
	payment recompute.PaymentInput
	player  models.Player
	calls   []string
}

func (f *fakeFund) call(name string, c *auth.Capability) error {
	f.calls = append(f.calls, name)
	f.cap = c
	return f.err
}

var players = []models.Player{
	{ID: 1, Name: "Tina", Role: models.Treasurer, Balance: models.Units(-10)},
	{ID: 2, Name: "Leo", Role: models.Leader, Balance: models.Units(30)},
}

func (f *fakeFund) Players(context.Context) ([]models.Player, error)  { return players, f.err }
func (f *fakeFund) Balances(context.Context) ([]models.Player, error) { return players, f.err }
func (f *fakeFund) Sessions(context.Context) ([]recompute.SessionView, error) {
	return []recompute.SessionView{{Session: models.Session{ID: 5, Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}}}, f.err
}
func (f *fakeFund) Payments(context.Context) ([]models.Payment, error) { return nil, f.err }
func (f *fakeFund) Ledger(context.Context) ([]rules.Adjustment, error) {
	return []rules.Adjustment{{PlayerID: 2, Amount: models.Units(30), Kind: rules.KindCleanReward, Reason: "Clean day"}}, f.err
}
func (f *fakeFund) Check(context.Context) ([]ledger.Drift, error) { return nil, f.err }

func (f *fakeFund) CreatePlayer(_ context.Context, c *auth.Capability, p models.Player) (models.Player, error) {
	f.player = p
	p.ID = 9
	return p, f.call("create_player", c)
}
func (f *fakeFund) UpdatePlayer(_ context.Context, c *auth.Capability, p models.Player) (models.Player, error) {
	f.player = p
	return p, f.call("update_player", c)
}
func (f *fakeFund) DeletePlayer(_ context.Context, c *auth.Capability, _ int64) error {
	return f.call("delete_player", c)
}
func (f *fakeFund) SubmitDay(_ context.Context, c *auth.Capability, in recompute.DayInput) (models.Session, error) {
	f.day = in
	return models.Session{ID: 5, Date: in.Date, IsOnline: in.Online}, f.call("submit_day", c)
}
func (f *fakeFund) UpdateSession(_ context.Context, c *auth.Capability, id int64, p recompute.SessionPatch) (models.Session, error) {
	f.patch = p
	return models.Session{ID: id}, f.call("update_session", c)
}
func (f *fakeFund) DeleteSession(_ context.Context, c *auth.Capability, _ int64) error {
	return f.call("delete_session", c)
}
func (f *fakeFund) ToggleSettled(_ context.Context, c *auth.Capability, id int64) (models.Session, error) {
	return models.Session{ID: id, IsSettled: true}, f.call("toggle_settled", c)
}
func (f *fakeFund) EditRecord(_ context.Context, c *auth.Capability, id int64, _ recompute.RecordPatch) (models.AttendanceRecord, error) {
	return models.AttendanceRecord{ID: id}, f.call("edit_record", c)
}
func (f *fakeFund) DeleteRecord(_ context.Context, c *auth.Capability, _ int64) error {
	return f.call("delete_record", c)
}
func (f *fakeFund) RecordPayment(_ context.Context, c *auth.Capability, in recompute.PaymentInput) (models.Payment, error) {
	f.payment = in
	return models.Payment{ID: 3, PlayerID: in.PlayerID, Amount: in.Amount}, f.call("record_payment", c)
}
func (f *fakeFund) EditPayment(_ context.Context, c *auth.Capability, id int64, _ recompute.PaymentPatch) (models.Payment, error) {
	return models.Payment{ID: id}, f.call("edit_payment", c)
}
func (f *fakeFund) DeletePayment(_ context.Context, c *auth.Capability, _ int64) error {
	return f.call("delete_payment", c)
}
func (f *fakeFund) Recompute(_ context.Context, c *auth.Capability) (ledger.Result, error) {
	return ledger.Result{Balances: map[int64]models.Money{1: -1000, 2: 3000}}, f.call("recompute", c)
}

const password = "correct horse"

func setup(t *testing.T) (*gin.Engine, *fakeFund, string) {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	issuer := auth.NewIssuer(hash, "test-secret", time.Hour)
	token, _, err := issuer.Login(password)
	require.NoError(t, err)

	fund := &fakeFund{}
	s := NewServer(fund, issuer, Options{Mode: gin.TestMode})
	return s.Router, fund, token
}

func httpDo(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		b, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type errBody struct {
	Status    string            `json:"status"`
	Error     string            `json:"error"`
	Fields    map[string]string `json:"fields"`
	RequestID string            `json:"request_id"`
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) errBody {
	t.Helper()
	var e errBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e), w.Body.String())
	return e
}

func TestHealthz(t *testing.T) {
	s := NewServer(&fakeFund{}, auth.NewIssuer("", "", time.Hour), Options{Mode: gin.TestMode})
	w := httpDo(s.Router, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	down := NewServer(&fakeFund{}, auth.NewIssuer("", "", time.Hour), Options{
		Mode: gin.TestMode,
		Ping: func(context.Context) error { return errors.New("connection refused") },
	})
	w = httpDo(down.Router, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")

	w = httpDo(s.Router, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPublicReads(t *testing.T) {
	r, _, _ := setup(t)

	w := httpDo(r, http.MethodGet, "/api/v1/balances", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"player_id":1,"name":"Tina","balance":"-10.00"},{"player_id":2,"name":"Leo","balance":"30.00"}]`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httpDo(r, http.MethodGet, "/api/v1/ledger", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"clean_reward"`)

	w = httpDo(r, http.MethodGet, "/api/v1/sessions", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":5`)

	w = httpDo(r, http.MethodGet, "/api/v1/export/balances.xlsx", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "team balances")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}

func TestLogin(t *testing.T) {
	r, _, _ := setup(t)

	w := httpDo(r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httpDo(r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeErr(t, w).Fields, "password")

	w = httpDo(r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"password": password})
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.NotEmpty(t, out.Token)
}

func TestLogin_NotConfigured(t *testing.T) {
	s := NewServer(&fakeFund{}, auth.NewIssuer("", "", time.Hour), Options{Mode: gin.TestMode})
	w := httpDo(s.Router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"password": "x"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMutations_RequireToken(t *testing.T) {
	r, fund, _ := setup(t)

	w := httpDo(r, http.MethodPost, "/api/v1/players", "", map[string]string{"name": "Max", "role": "member"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httpDo(r, http.MethodPost, "/api/v1/admin/recompute", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, decodeErr(t, w).RequestID)

	assert.Empty(t, fund.calls)
}

func TestCreatePlayer(t *testing.T) {
	r, fund, token := setup(t)

	w := httpDo(r, http.MethodPost, "/api/v1/players", token, map[string]any{"name": " Max ", "role": "member", "group_id": 1})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Max", fund.player.Name)
	assert.Equal(t, models.Member, fund.player.Role)
	require.NotNil(t, fund.cap)
	assert.Equal(t, "admin", fund.cap.Subject)

	w = httpDo(r, http.MethodPost, "/api/v1/players", token, map[string]any{"name": "Zed", "role": "coach"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeErr(t, w).Fields, "role")

	w = httpDo(r, http.MethodPost, "/api/v1/players", token, map[string]any{"name": "Zed", "role": "member", "group_id": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitDay(t *testing.T) {
	r, fund, token := setup(t)

	w := httpDo(r, http.MethodPost, "/api/v1/sessions", token, map[string]any{
		"date":   "2024-05-01",
		"online": true,
		"marks": []map[string]any{
			{"player_id": 2, "status": "on time"},
			{"player_id": 3, "status": "Absent-Uninformed"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "2024-05-01", fund.day.Date.Format(models.DateLayout))
	assert.True(t, fund.day.Online)
	assert.Equal(t, []models.Mark{{PlayerID: 2, Status: models.OnTime}, {PlayerID: 3, Status: models.AbsentUninformed}}, fund.day.Marks)

	bad := []map[string]any{
		{"date": "01.05.2024"},
		{"date": "2024-05-01", "marks": []map[string]any{{"player_id": 2, "status": "asleep"}}},
		{"date": "2024-05-01", "marks": []map[string]any{{"status": "late"}}},
	}
	for i, body := range bad {
		w := httpDo(r, http.MethodPost, "/api/v1/sessions", token, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, fmt.Sprint(i))
	}
	assert.Equal(t, []string{"submit_day"}, fund.calls)
}

func TestUpdateSession_Patch(t *testing.T) {
	r, fund, token := setup(t)

	w := httpDo(r, http.MethodPut, "/api/v1/sessions/5", token, map[string]any{"online": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, fund.patch.Online)
	assert.False(t, *fund.patch.Online)
	assert.Nil(t, fund.patch.Date)
	assert.Nil(t, fund.patch.Marks)

	w = httpDo(r, http.MethodPut, "/api/v1/sessions/abc", token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordPayment(t *testing.T) {
	r, fund, token := setup(t)

	w := httpDo(r, http.MethodPost, "/api/v1/payments", token, map[string]any{"player_id": 2, "amount": "12.50"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, models.Money(1250), fund.payment.Amount)
	assert.True(t, fund.payment.Date.IsZero())

	w = httpDo(r, http.MethodPost, "/api/v1/payments", token, map[string]any{"player_id": 2, "amount": "-5"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httpDo(r, http.MethodPost, "/api/v1/payments", token, map[string]any{"player_id": 2, "amount": "lots"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestErrorMapping(t *testing.T) {
	r, fund, token := setup(t)

	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: session 5", recompute.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: two sessions", recompute.ErrConflict), http.StatusConflict},
		{fmt.Errorf("%w: bad marks", recompute.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: expired", auth.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("%w: pq: connection lost", recompute.ErrPersistence), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		fund.err = tc.err
		w := httpDo(r, http.MethodDelete, "/api/v1/sessions/5", token, nil)
		assert.Equal(t, tc.code, w.Code, tc.err.Error())
	}

	// внутренние подробности наружу не уходят
	fund.err = fmt.Errorf("%w: pq: connection lost", recompute.ErrPersistence)
	w := httpDo(r, http.MethodPost, "/api/v1/admin/recompute", token, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq")
}

func TestDeleteAndRecompute(t *testing.T) {
	r, fund, token := setup(t)

	w := httpDo(r, http.MethodDelete, "/api/v1/payments/3", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httpDo(r, http.MethodPost, "/api/v1/sessions/5/settle", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httpDo(r, http.MethodPost, "/api/v1/admin/recompute", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"balances":{"1":"-10.00","2":"30.00"},"entries":0}`, w.Body.String())

	w = httpDo(r, http.MethodGet, "/api/v1/admin/check", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"consistent":true`)

	assert.Equal(t, []string{"delete_payment", "toggle_settled", "recompute"}, fund.calls)
}
