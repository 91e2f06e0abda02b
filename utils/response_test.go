package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serve runs a single handler through a fresh router and decodes the envelope.
func serve(t *testing.T, h gin.HandlerFunc, mw ...gin.HandlerFunc) (int, APIResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(mw...)
	r.GET("/probe", h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	r.ServeHTTP(w, req)

	var env APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w.Code, env
}

func asProduction(t *testing.T) {
	t.Helper()
	prev := config.AppConfig.Env
	config.AppConfig.Env = "production"
	t.Cleanup(func() { config.AppConfig.Env = prev })
}

func TestRespondOK_Envelope(t *testing.T) {
	code, env := serve(t, func(c *gin.Context) {
		RespondOK(c, "fetched", gin.H{"id": "b1"})
	})

	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	assert.Equal(t, "fetched", env.Message)
	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "b1", data["id"])
}

func TestRespondOK_OmitsNilData(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/probe", func(c *gin.Context) { RespondOK(c, "done", nil) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.NotContains(t, w.Body.String(), `"data"`)
}

func TestRespondCreated_Envelope(t *testing.T) {
	code, env := serve(t, func(c *gin.Context) {
		RespondCreated(c, "booking created", gin.H{"id": "b2"})
	})

	assert.Equal(t, http.StatusCreated, code)
	assert.True(t, env.Success)
	assert.Equal(t, "booking created", env.Message)
}

func TestRespondError_ClassifiedErrorsKeepTheirMessage(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "conflict",
			err:        NewError(KindConflict, "SLOT_UNAVAILABLE", "slot is no longer available"),
			wantStatus: http.StatusConflict,
			wantMsg:    "slot is no longer available",
		},
		{
			name:       "policy violation",
			err:        NewError(KindPolicyViolation, "NOSHOW_TOO_EARLY", "the grace window has not elapsed yet"),
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "the grace window has not elapsed yet",
		},
		{
			name:       "gateway",
			err:        NewError(KindGateway, "GATEWAY_ERROR", "payment provider is unreachable"),
			wantStatus: http.StatusBadGateway,
			wantMsg:    "payment provider is unreachable",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, env := serve(t, func(c *gin.Context) { RespondError(c, tc.err) })
			assert.Equal(t, tc.wantStatus, code)
			assert.False(t, env.Success)
			assert.Equal(t, tc.wantMsg, env.Message)
		})
	}
}

func TestRespondError_InternalDetailHiddenInProduction(t *testing.T) {
	boom := WrapError(KindInternal, "DB_ERROR", "failed to save", assert.AnError)

	t.Run("development echoes the chain", func(t *testing.T) {
		code, env := serve(t, func(c *gin.Context) { RespondError(c, boom) })
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Contains(t, env.Message, "DB_ERROR")
	})

	t.Run("production answers the generic line", func(t *testing.T) {
		asProduction(t)
		code, env := serve(t, func(c *gin.Context) { RespondError(c, boom) })
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Equal(t, "Internal server error", env.Message)
	})
}

func TestErrorHandler_RecoversPanics(t *testing.T) {
	code, env := serve(t,
		func(c *gin.Context) { panic("wiring bug") },
		ErrorHandler(),
	)

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.False(t, env.Success)
	assert.Equal(t, "An unexpected error occurred. Please try again later.", env.Message)
}

func TestErrorHandler_PassesCleanRequestsThrough(t *testing.T) {
	code, env := serve(t,
		func(c *gin.Context) { RespondOK(c, "ok", nil) },
		ErrorHandler(),
	)

	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
}
