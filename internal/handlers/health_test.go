package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type healthCheckerFunc func(ctx context.Context) error

func (f healthCheckerFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		checker    HealthChecker
		wantStatus int
		wantHealth string
		wantDB     string
	}{
		{
			name:       "database reachable",
			checker:    healthCheckerFunc(func(context.Context) error { return nil }),
			wantStatus: http.StatusOK,
			wantHealth: "healthy",
			wantDB:     "ok",
		},
		{
			name:       "no database configured",
			checker:    nil,
			wantStatus: http.StatusOK,
			wantHealth: "healthy",
			wantDB:     "ok",
		},
		{
			name:       "database down",
			checker:    healthCheckerFunc(func(context.Context) error { return errors.New("connection refused") }),
			wantStatus: http.StatusServiceUnavailable,
			wantHealth: "unhealthy",
			wantDB:     "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			router := gin.New()
			router.GET("/health", NewHealthHandler(tt.checker).Get)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, w.Code)

			var response HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.wantHealth, response.Status)
			assert.Equal(t, tt.wantDB, response.Database)
			assert.Equal(t, Version, response.Version)

			_, err := time.Parse(time.RFC3339, response.Timestamp)
			assert.NoError(t, err)
		})
	}
}
