package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/malexstudio/site_api/internal/models"
)

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Appointment{},
		&models.Work{},
		&models.SiteConfig{},
	))
	return db
}

func newAppointmentResolver(t *testing.T) *AppointmentResolver {
	t.Helper()
	db := newHandlerDB(t)
	require.NoError(t, db.Create(&models.SiteConfig{
		ID:         1,
		StartingAt: 9,
		ClosingAt:  17,
	}).Error)
	return &AppointmentResolver{DB: db, Limit: 50}
}

func seedAppointment(t *testing.T, db *gorm.DB, date time.Time, duration int) models.Appointment {
	t.Helper()
	app := models.Appointment{
		Date:        date,
		Duration:    duration,
		ClientName:  "client",
		ClientPhone: "+100000000",
	}
	require.NoError(t, db.Create(&app).Error)
	return app
}

func TestCreateAndGetAppointment(t *testing.T) {
	ctx := context.Background()
	r := newAppointmentResolver(t)

	resp := r.CreateAppointment(ctx, map[string]any{
		"input": map[string]any{
			"date":         "2026-09-01T10:00:00Z",
			"duration":     int64(2),
			"client_name":  "Ivan",
			"client_phone": "+1000",
			"comment":      "first visit",
		},
	})
	require.Equal(t, 200, resp.Code)
	require.Len(t, resp.Data, 1)
	created := resp.Data[0].(models.Appointment)
	require.Equal(t, "Ivan", created.ClientName)
	require.False(t, created.Confirmed)

	resp = r.Appointment(ctx, map[string]any{"id": int64(created.ID)})
	require.Equal(t, 200, resp.Code)
	require.Len(t, resp.Data, 1)
	require.Equal(t, created.ID, resp.Data[0].(models.Appointment).ID)

	// a missing id answers success with no rows
	resp = r.Appointment(ctx, map[string]any{"id": int64(9999)})
	require.Equal(t, 200, resp.Code)
	require.Empty(t, resp.Data)
}

func TestCreateAppointmentRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	r := newAppointmentResolver(t)

	resp := r.CreateAppointment(ctx, map[string]any{})
	require.Equal(t, 400, resp.Code)

	resp = r.CreateAppointment(ctx, map[string]any{
		"input": map[string]any{"date": "not a date", "duration": int64(1)},
	})
	require.Equal(t, 400, resp.Code)

	resp = r.CreateAppointment(ctx, map[string]any{
		"input": map[string]any{"date": "2026-09-01T10:00:00Z", "duration": int64(0)},
	})
	require.Equal(t, 400, resp.Code)
}

func TestAppointmentsRequireIDsOrFilterWithPagination(t *testing.T) {
	ctx := context.Background()
	r := newAppointmentResolver(t)

	resp := r.Appointments(ctx, map[string]any{})
	require.Equal(t, 400, resp.Code)
	require.Equal(t, "You must specify array of necessary ids or filter with pagination!", resp.Message)

	resp = r.Appointments(ctx, map[string]any{
		"filter": map[string]any{"confirmed": false},
	})
	require.Equal(t, 400, resp.Code)
	require.Equal(t, "Pagination param was not specified!", resp.Message)

	resp = r.Appointments(ctx, map[string]any{
		"filter":     map[string]any{"confirmed": false},
		"pagination": map[string]any{"page": int64(1), "perPage": int64(500)},
	})
	require.Equal(t, 400, resp.Code)
	require.Equal(t, "Pagination is limited to 50 objects per request!", resp.Message)
}

func TestAppointmentsByIDsAndFilter(t *testing.T) {
	ctx := context.Background()
	r := newAppointmentResolver(t)

	day := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	a := seedAppointment(t, r.DB, day, 1)
	b := seedAppointment(t, r.DB, day.Add(time.Hour), 1)
	seedAppointment(t, r.DB, day.AddDate(0, 0, 5), 1)

	resp := r.Appointments(ctx, map[string]any{
		"ids": []any{int64(a.ID), int64(b.ID)},
	})
	require.Equal(t, 200, resp.Code)
	require.Len(t, resp.Data, 2)

	resp = r.Appointments(ctx, map[string]any{
		"filter": map[string]any{
			"dateFrom": "2026-09-01T00:00:00Z",
			"dateTo":   "2026-09-02T00:00:00Z",
		},
		"pagination": map[string]any{"page": int64(1), "perPage": int64(10)},
		"sort":       map[string]any{"field": "date", "order": "desc"},
	})
	require.Equal(t, 200, resp.Code)
	require.Len(t, resp.Data, 2)
	first := resp.Data[0].(models.Appointment)
	second := resp.Data[1].(models.Appointment)
	require.True(t, first.Date.After(second.Date))
}

func TestUpdateAppointment(t *testing.T) {
	ctx := context.Background()
	r := newAppointmentResolver(t)

	app := seedAppointment(t, r.DB, time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC), 1)

	resp := r.UpdateAppointment(ctx, map[string]any{
		"id":    int64(app.ID),
		"input": map[string]any{"confirmed": true, "comment": "paid"},
	})
	require.Equal(t, 200, resp.Code)
	require.Len(t, resp.Data, 1)
	updated := resp.Data[0].(models.Appointment)
	require.True(t, updated.Confirmed)
	require.Equal(t, "paid", updated.Comment)

	// empty update set is a bad request
	resp = r.UpdateAppointment(ctx, map[string]any{
		"id":    int64(app.ID),
		"input": map[string]any{},
	})
	require.Equal(t, 400, resp.Code)
}

func TestBusyTimesAtDay(t *testing.T) {
	ctx := context.Background()
	r := newAppointmentResolver(t)

	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	seedAppointment(t, r.DB, day.Add(10*time.Hour), 1)
	seedAppointment(t, r.DB, day.Add(12*time.Hour), 2)
	seedAppointment(t, r.DB, day.AddDate(0, 0, 1), 1) // next day, excluded

	resp := r.BusyTimesAtDay(ctx, map[string]any{"date": "2026-09-01"})
	require.Equal(t, 200, resp.Code)
	require.Len(t, resp.Data, 2)
	for _, item := range resp.Data {
		require.True(t, item.(busyTime).Busy)
	}
}

func TestIsDayBusy(t *testing.T) {
	ctx := context.Background()
	r := newAppointmentResolver(t)

	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	// 4 of 8 working hours booked: not busy yet
	seedAppointment(t, r.DB, day.Add(10*time.Hour), 4)
	resp := r.IsDayBusy(ctx, map[string]any{"date": "2026-09-01"})
	require.Equal(t, 200, resp.Code)
	require.Len(t, resp.Data, 1)
	require.False(t, resp.Data[0].(busyTime).Busy)

	// 8 of 8: full
	seedAppointment(t, r.DB, day.Add(14*time.Hour), 4)
	resp = r.IsDayBusy(ctx, map[string]any{"date": "2026-09-01"})
	require.Equal(t, 200, resp.Code)
	require.True(t, resp.Data[0].(busyTime).Busy)
}

func TestBusyDaysAtMonth(t *testing.T) {
	ctx := context.Background()
	r := newAppointmentResolver(t)

	// day 1 fully booked, day 2 half booked, day 3 untouched
	d1 := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	seedAppointment(t, r.DB, d1, 8)
	seedAppointment(t, r.DB, d1.AddDate(0, 0, 1), 4)

	resp := r.BusyDaysAtMonth(ctx, map[string]any{"date": "2026-09-15"})
	require.Equal(t, 200, resp.Code)
	require.Len(t, resp.Data, 1)
	busy := resp.Data[0].(busyTime)
	require.Equal(t, 1, busy.Date.Day())
	require.True(t, busy.Busy)
}
