package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Ross1116/sitespace-app-sub000/internal/logger"
	"github.com/Ross1116/sitespace-app-sub000/pkg/backend"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invoke(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule/day", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ErrorHandler(logger.Get("error"))(err, c)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestErrorHandler_KeepsHTTPErrorCode(t *testing.T) {
	rec, body := invoke(t, echo.NewHTTPError(http.StatusConflict, "asset is unavailable"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "asset is unavailable", body["message"])
}

func TestErrorHandler_BackendFailureBecomesBadGateway(t *testing.T) {
	apiErr := &backend.APIError{StatusCode: 503, Message: "booking service is restarting"}
	rec, body := invoke(t, fmt.Errorf("commit reschedule: %w", apiErr))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "booking service is restarting", body["message"])
}

func TestErrorHandler_UnexpectedErrorIsInternal(t *testing.T) {
	rec, body := invoke(t, errors.New("something broke"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "something broke", body["message"])
}
