package controllerImp

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"cancelflow/entities"
)

type HealthCtrl struct {
	db      *gorm.DB
	started time.Time
}

func NewHealthCtrl(db *gorm.DB) *HealthCtrl { return &HealthCtrl{db: db, started: time.Now()} }

type check struct {
	OK  bool   `json:"ok"`
	Err string `json:"err,omitempty"`
}

// Health pings the database and confirms the flow tables exist. Any failed
// check answers 503.
func (h *HealthCtrl) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 800*time.Millisecond)
	defer cancel()

	checks := map[string]check{
		"database": h.ping(ctx),
		"schema":   h.schema(ctx),
	}
	ok := true
	for name, ch := range checks {
		if !ch.OK {
			ok = false
			log.Warn().Str("check", name).Str("err", ch.Err).Msg("health check failed")
		}
	}
	status := http.StatusOK
	if !ok {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, echo.Map{
		"ok":         ok,
		"uptime_sec": int(time.Since(h.started).Seconds()),
		"checks":     checks,
		"time":       time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthCtrl) ping(ctx context.Context) check {
	if h.db == nil {
		return check{Err: "gorm db is nil"}
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return check{Err: "db.DB(): " + err.Error()}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return check{Err: "ping: " + err.Error()}
	}
	return check{OK: true}
}

func (h *HealthCtrl) schema(ctx context.Context) check {
	if h.db == nil {
		return check{Err: "gorm db is nil"}
	}
	m := h.db.WithContext(ctx).Migrator()
	for _, t := range []any{&entities.Subscription{}, &entities.Cancellation{}} {
		if !m.HasTable(t) {
			return check{Err: "missing table for " + describe(t)}
		}
	}
	return check{OK: true}
}

func describe(t any) string {
	switch t.(type) {
	case *entities.Subscription:
		return "subscriptions"
	case *entities.Cancellation:
		return "cancellations"
	}
	return "unknown"
}
