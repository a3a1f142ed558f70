package controllerImp

import (
	"bytes"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"cancelflow/pkg/report"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportCtrl struct{ b *report.Builder }

func New(b *report.Builder) *ReportCtrl { return &ReportCtrl{b} }

// Export serves the cancellations workbook.
func (h *ReportCtrl) Export(c echo.Context) error {
	rows, err := h.b.Rows(c.Request().Context())
	if err != nil {
		log.Error().Err(err).Msg("export: read cancellations")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to export cancellations"})
	}
	var buf bytes.Buffer
	if err := report.Write(&buf, rows); err != nil {
		log.Error().Err(err).Msg("export: build workbook")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to export cancellations"})
	}
	name := "cancellations-" + time.Now().UTC().Format("20060102") + ".xlsx"
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}
