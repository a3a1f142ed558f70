package controllerImp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"cancelflow/database"
	"cancelflow/entities"
	cancelRepoImp "cancelflow/pkg/cancellation/repositoryImp"
	"cancelflow/pkg/report"
	subRepoImp "cancelflow/pkg/subscription/repositoryImp"
)

func TestExport(t *testing.T) {
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Create(&entities.Cancellation{UserID: "u1", DownsellVariant: "A", StateJSONArray: "[]"}).Error)

	ctrl := New(report.NewBuilder(cancelRepoImp.New(db), subRepoImp.New(db)))
	e := echo.New()
	e.GET("/api/cancellations/export", ctrl.Export)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cancellations/export", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxMIME, rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), ".xlsx")

	x, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer x.Close()
	rows, err := x.GetRows(report.SheetFlows)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	require.NoError(t, db.Migrator().DropTable(&entities.Cancellation{}))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cancellations/export", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
