package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_RecordsStatusOfErrors(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())
	e.GET("/widgets/:id", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "short and stout")
	})

	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(http.MethodGet, "/widgets/:id", "418"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/widgets/7", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(http.MethodGet, "/widgets/:id", "418"))
	assert.Equal(t, before+1, after)
}

func TestRecordImageUpload(t *testing.T) {
	okBefore := testutil.ToFloat64(ImageUploadsTotal.WithLabelValues("local", "success"))
	errBefore := testutil.ToFloat64(ImageUploadsTotal.WithLabelValues("local", "error"))

	RecordImageUpload("local", nil)
	RecordImageUpload("local", errors.New("disk full"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ImageUploadsTotal.WithLabelValues("local", "success")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(ImageUploadsTotal.WithLabelValues("local", "error")))
}
