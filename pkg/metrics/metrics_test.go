package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordCatalogOperation(t *testing.T) {
	before := testutil.ToFloat64(CatalogOperationsTotal.WithLabelValues(OpAppend, StatusError))

	RecordCatalogOperation(OpAppend, time.Now(), errors.New("boom"))

	after := testutil.ToFloat64(CatalogOperationsTotal.WithLabelValues(OpAppend, StatusError))
	assert.Equal(t, before+1, after)
}

func TestHTTPMiddlewareCapturesStatus(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodDelete, "404"))

	handler := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/category", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodDelete, "404")))
}

func TestResponseWriterKeepsFirstStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec)
	assert.Equal(t, http.StatusOK, rw.StatusCode())

	rw.WriteHeader(http.StatusTeapot)
	rw.WriteHeader(http.StatusInternalServerError)
	_, err := rw.Write([]byte("short and stout"))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, rw.StatusCode())
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "short and stout", rec.Body.String())
	assert.Same(t, http.ResponseWriter(rec), rw.Unwrap())
}

func TestResponseWriterImplicitOK(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec)

	_, err := rw.Write([]byte("ok"))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rw.StatusCode())
}
