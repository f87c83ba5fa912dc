package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velimirb/transfer-window/internal/config"
	"github.com/velimirb/transfer-window/internal/model"
)

func doJSON(t *testing.T, h echo.HandlerFunc, method, target, body string, setup func(echo.Context)) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}
	require.NoError(t, h(c))
	return rec
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestRegisterValidation(t *testing.T) {
	h := NewAuthHandler(nil, nil, config.Config{})
	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing name", `{"email":"a@b.c","password":"longenough"}`},
		{"bad email", `{"name":"x","email":"nope","password":"longenough"}`},
		{"short password", `{"name":"x","email":"a@b.c","password":"short"}`},
		{"unknown role", `{"name":"x","email":"a@b.c","password":"longenough","role":"WIZARD"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, h.Register, http.MethodPost, "/v1/auth/register", tc.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, false, envelope(t, rec)["success"])
		})
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	h := NewAuthHandler(nil, nil, config.Config{})
	rec := doJSON(t, h.Login, http.MethodPost, "/v1/auth/login", `{"email":"a@b.c"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshRequiresToken(t *testing.T) {
	h := NewAuthHandler(nil, nil, config.Config{})
	rec := doJSON(t, h.Refresh, http.MethodPost, "/v1/auth/refresh", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClubValidation(t *testing.T) {
	h := NewClubHandler(nil, nil)
	cases := []struct {
		name string
		body string
		want string
	}{
		{"missing name", `{"country":"ES","license_no":"L-1"}`, "name is required"},
		{"missing country", `{"name":"FC","license_no":"L-1"}`, "country is required"},
		{"missing license", `{"name":"FC","country":"ES"}`, "license_no is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, h.Create, http.MethodPost, "/v1/clubs", tc.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.want, envelope(t, rec)["message"])
		})
	}
}

func TestPlayerValidation(t *testing.T) {
	h := NewPlayerHandler(nil, nil)
	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"age":22,"position":"Forward","market_value":"1M"}`},
		{"age too low", `{"name":"P","age":12,"position":"Forward","market_value":"1M"}`},
		{"bad position", `{"name":"P","age":22,"position":"Striker","market_value":"1M"}`},
		{"bad health", `{"name":"P","age":22,"position":"Forward","market_value":"1M","health_status":"tired"}`},
		{"bad amount", `{"name":"P","age":22,"position":"Forward","market_value":"1M2"}`},
		{"bad contract end", `{"name":"P","age":22,"position":"Forward","market_value":"1M","contract_end":"tomorrow"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, h.Create, http.MethodPost, "/v1/players", tc.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestTransferCreateValidation(t *testing.T) {
	h := NewTransferHandler(nil, nil, nil, nil, nil)
	t.Run("missing player", func(t *testing.T) {
		rec := doJSON(t, h.Create, http.MethodPost, "/v1/transfers", `{"amount":"5M"}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("unknown type", func(t *testing.T) {
		rec := doJSON(t, h.Create, http.MethodPost, "/v1/transfers", `{"player_id":3,"type":"RENTAL"}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("admin needs buyer club", func(t *testing.T) {
		rec := doJSON(t, h.Create, http.MethodPost, "/v1/transfers", `{"player_id":3,"amount":"5M"}`, func(c echo.Context) {
			c.Set("user_id", float64(1))
			c.Set("role", model.RoleAdmin)
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestOfferCreateValidation(t *testing.T) {
	h := NewOfferHandler(nil, nil, nil, nil, nil)
	t.Run("missing transfer", func(t *testing.T) {
		rec := doJSON(t, h.Create, http.MethodPost, "/v1/offers", `{"amount":"5M"}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("bad amount", func(t *testing.T) {
		rec := doJSON(t, h.Create, http.MethodPost, "/v1/offers", `{"transfer_id":9,"amount":"-3"}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("zero amount", func(t *testing.T) {
		rec := doJSON(t, h.Counter, http.MethodPost, "/v1/offers/3/counter", `{"amount":"0"}`, func(c echo.Context) {
			c.SetParamNames("id")
			c.SetParamValues("3")
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestWindowValidation(t *testing.T) {
	h := NewWindowHandler(nil)
	t.Run("missing bounds", func(t *testing.T) {
		rec := doJSON(t, h.Create, http.MethodPost, "/v1/transfer-windows", `{}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("inverted range", func(t *testing.T) {
		body := `{"start_at":"2026-09-01T00:00:00Z","end_at":"2026-08-01T00:00:00Z"}`
		rec := doJSON(t, h.Create, http.MethodPost, "/v1/transfer-windows", body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "start_at must be before end_at", envelope(t, rec)["message"])
	})
}

func TestBulkDeleteValidation(t *testing.T) {
	h := NewBulkHandler(nil)
	t.Run("table not allowed", func(t *testing.T) {
		rec := doJSON(t, h.Delete, http.MethodPost, "/v1/admin/bulk-delete", `{"table":"users","ids":[1]}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "table not allowed", envelope(t, rec)["message"])
	})
	t.Run("empty ids", func(t *testing.T) {
		rec := doJSON(t, h.Delete, http.MethodPost, "/v1/admin/bulk-delete", `{"table":"players"}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestNotificationsNeedIdentity(t *testing.T) {
	h := NewNotificationHandler(nil)
	rec := doJSON(t, h.List, http.MethodGet, "/v1/notifications", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetUserIDClaimTypes(t *testing.T) {
	e := echo.New()
	for name, v := range map[string]interface{}{
		"float64": float64(42),
		"uint64":  uint64(42),
		"int":     42,
		"string":  "42",
	} {
		t.Run(name, func(t *testing.T) {
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			c.Set("user_id", v)
			id, err := getUserID(c)
			require.NoError(t, err)
			assert.Equal(t, uint64(42), id)
		})
	}
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, err := getUserID(c)
	assert.Error(t, err)
}

func TestSameClub(t *testing.T) {
	a, b := uint64(1), uint64(2)
	assert.True(t, sameClub(nil, nil))
	assert.True(t, sameClub(&a, &a))
	assert.False(t, sameClub(&a, &b))
	assert.False(t, sameClub(&a, nil))
	assert.False(t, sameClub(nil, &b))
}
