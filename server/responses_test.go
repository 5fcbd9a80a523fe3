package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/jrsteele09/go-atlassian-gateway/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Run("encodes with status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		writeJSON(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusCreated, successResponse{Success: true, Data: "ok"})

		require.Equal(t, http.StatusCreated, rec.Code)
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		require.JSONEq(t, `{"success":true,"data":"ok"}`, rec.Body.String())
	})

	t.Run("encoding failure is reported before headers are sent", func(t *testing.T) {
		rec := httptest.NewRecorder()
		data := successResponse{Success: true, Data: json.RawMessage("<html>login</html>")}
		writeJSON(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, data)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.JSONEq(t,
			`{"success":false,"error":{"code":"`+apperrors.CodeInternalError+`","message":"Internal server error"}}`,
			rec.Body.String())
	})
}
