package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/malexstudio/site_api/internal/events"
	"github.com/malexstudio/site_api/internal/graphql"
	"github.com/malexstudio/site_api/internal/logging"
	"github.com/malexstudio/site_api/internal/models"
)

// AppointmentResolver serves the booking model: admin CRUD plus the public
// busy-calendar queries the booking widget renders from.
type AppointmentResolver struct {
	DB       *gorm.DB
	Producer *events.Producer

	// Limit caps perPage and num arguments.
	Limit int
}

type busyTime struct {
	Date time.Time `json:"date"`
	Busy bool      `json:"busy"`
}

func (r *AppointmentResolver) Appointment(ctx context.Context, args map[string]any) *graphql.Response {
	id, ok := argID(args, "id")
	if !ok {
		return graphql.BadRequest("")
	}
	var app models.Appointment
	if err := r.DB.WithContext(ctx).First(&app, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return graphql.OK()
		}
		return failure(ctx, err)
	}
	return graphql.OK(app)
}

func (r *AppointmentResolver) Appointments(ctx context.Context, args map[string]any) *graphql.Response {
	q := r.DB.WithContext(ctx).Model(&models.Appointment{})

	ids, hasIDs := argIDs(args, "ids")
	filter, hasFilter := argMap(args, "filter")
	page, hasPagination := argPagination(args, "pagination")

	switch {
	case hasIDs:
		q = q.Where("id IN ?", ids)
	case hasFilter || hasPagination:
		if !hasPagination {
			return graphql.BadRequest("Pagination param was not specified!")
		}
		if page.PerPage > r.Limit {
			return graphql.BadRequest(fmt.Sprintf("Pagination is limited to %d objects per request!", r.Limit))
		}
		if from, ok := argTime(filter, "dateFrom"); ok {
			q = q.Where("date >= ?", from)
		}
		if to, ok := argTime(filter, "dateTo"); ok {
			q = q.Where("date <= ?", to)
		}
		if confirmed, ok := argBool(filter, "confirmed"); ok {
			q = q.Where("confirmed = ?", confirmed)
		}
		q = q.Offset(page.PerPage * (page.Page - 1)).Limit(page.PerPage)
	default:
		return graphql.BadRequest("You must specify array of necessary ids or filter with pagination!")
	}

	if sort, ok := argMap(args, "sort"); ok {
		if field, ok := argString(sort, "field"); ok {
			order, _ := argString(sort, "order")
			if order != "desc" {
				order = "asc"
			}
			q = q.Order(fmt.Sprintf("%s %s", field, order))
		}
	}

	var apps []models.Appointment
	if err := q.Find(&apps).Error; err != nil {
		return failure(ctx, err)
	}
	data := make([]any, len(apps))
	for i, a := range apps {
		data[i] = a
	}
	return graphql.OK(data...)
}

func (r *AppointmentResolver) CreateAppointment(ctx context.Context, args map[string]any) *graphql.Response {
	l := logging.FromContext(ctx).With("resolver", "createAppointment")

	input, ok := argMap(args, "input")
	if !ok {
		return graphql.BadRequest("")
	}
	date, ok := argTime(input, "date")
	if !ok {
		return graphql.BadRequest("")
	}
	duration, ok := argInt(input, "duration")
	if !ok || duration < 1 {
		return graphql.BadRequest("")
	}
	name, _ := argString(input, "client_name")
	phone, _ := argString(input, "client_phone")
	comment, _ := argString(input, "comment")

	app := models.Appointment{
		Date:        date,
		Duration:    duration,
		ClientName:  name,
		ClientPhone: phone,
		Comment:     comment,
	}
	if err := r.DB.WithContext(ctx).Create(&app).Error; err != nil {
		return failure(ctx, err)
	}

	publish(ctx, r.Producer, "appointment_events", fmt.Sprint(app.ID), map[string]any{
		"type": "appointment_created",
		"id":   app.ID,
		"date": app.Date,
	})
	l.Info("appointment_created", "status", 200, "id", app.ID)
	return graphql.OK(app)
}

func (r *AppointmentResolver) UpdateAppointment(ctx context.Context, args map[string]any) *graphql.Response {
	id, ok := argID(args, "id")
	if !ok {
		return graphql.BadRequest("")
	}
	input, ok := argMap(args, "input")
	if !ok {
		return graphql.BadRequest("")
	}
	updates := appointmentUpdates(input)
	if len(updates) == 0 {
		return graphql.BadRequest("")
	}

	if err := r.DB.WithContext(ctx).Model(&models.Appointment{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return failure(ctx, err)
	}
	var app models.Appointment
	if err := r.DB.WithContext(ctx).First(&app, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return graphql.OK()
		}
		return failure(ctx, err)
	}
	return graphql.OK(app)
}

func (r *AppointmentResolver) UpdateManyAppointments(ctx context.Context, args map[string]any) *graphql.Response {
	ids, ok := argIDs(args, "ids")
	if !ok || len(ids) == 0 {
		return graphql.BadRequest("")
	}
	input, ok := argMap(args, "input")
	if !ok {
		return graphql.BadRequest("")
	}
	updates := appointmentUpdates(input)
	if len(updates) == 0 {
		return graphql.BadRequest("")
	}

	if err := r.DB.WithContext(ctx).Model(&models.Appointment{}).Where("id IN ?", ids).Updates(updates).Error; err != nil {
		return failure(ctx, err)
	}
	var apps []models.Appointment
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&apps).Error; err != nil {
		return failure(ctx, err)
	}
	data := make([]any, len(apps))
	for i, a := range apps {
		data[i] = a
	}
	return graphql.OK(data...)
}

func appointmentUpdates(input map[string]any) map[string]any {
	updates := map[string]any{}
	if date, ok := argTime(input, "date"); ok {
		updates["date"] = date
	}
	if duration, ok := argInt(input, "duration"); ok {
		updates["duration"] = duration
	}
	if name, ok := argString(input, "client_name"); ok {
		updates["client_name"] = name
	}
	if phone, ok := argString(input, "client_phone"); ok {
		updates["client_phone"] = phone
	}
	if comment, ok := argString(input, "comment"); ok {
		updates["comment"] = comment
	}
	if confirmed, ok := argBool(input, "confirmed"); ok {
		updates["confirmed"] = confirmed
	}
	return updates
}

// BusyTimesAtDay lists the reserved slots of one day.
func (r *AppointmentResolver) BusyTimesAtDay(ctx context.Context, args map[string]any) *graphql.Response {
	date, ok := argTime(args, "date")
	if !ok {
		return graphql.BadRequest("")
	}
	apps, err := r.appointmentsBetween(ctx, dayStart(date), dayStart(date).AddDate(0, 0, 1))
	if err != nil {
		return failure(ctx, err)
	}
	data := make([]any, len(apps))
	for i, a := range apps {
		data[i] = busyTime{Date: a.Date, Busy: true}
	}
	return graphql.OK(data...)
}

// IsDayBusy reports whether a day has no room left for new appointments,
// comparing booked hours against the configured working hours.
func (r *AppointmentResolver) IsDayBusy(ctx context.Context, args map[string]any) *graphql.Response {
	date, ok := argTime(args, "date")
	if !ok {
		return graphql.BadRequest("")
	}
	workHours, err := r.workHours(ctx)
	if err != nil {
		return failure(ctx, err)
	}
	apps, err := r.appointmentsBetween(ctx, dayStart(date), dayStart(date).AddDate(0, 0, 1))
	if err != nil {
		return failure(ctx, err)
	}
	booked := 0
	for _, a := range apps {
		booked += a.Duration
	}
	return graphql.OK(busyTime{Date: date, Busy: booked >= workHours})
}

// BusyDaysAtMonth lists the days of a month that are fully booked.
func (r *AppointmentResolver) BusyDaysAtMonth(ctx context.Context, args map[string]any) *graphql.Response {
	date, ok := argTime(args, "date")
	if !ok {
		return graphql.BadRequest("")
	}
	workHours, err := r.workHours(ctx)
	if err != nil {
		return failure(ctx, err)
	}

	monthStart := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	apps, err := r.appointmentsBetween(ctx, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return failure(ctx, err)
	}

	bookedByDay := map[int]int{}
	for _, a := range apps {
		bookedByDay[a.Date.Day()] += a.Duration
	}

	var data []any
	for day := 1; day <= monthStart.AddDate(0, 1, -1).Day(); day++ {
		if bookedByDay[day] >= workHours {
			data = append(data, busyTime{
				Date: monthStart.AddDate(0, 0, day-1),
				Busy: true,
			})
		}
	}
	return graphql.OK(data...)
}

func (r *AppointmentResolver) appointmentsBetween(ctx context.Context, from, to time.Time) ([]models.Appointment, error) {
	var apps []models.Appointment
	err := r.DB.WithContext(ctx).
		Where("date >= ? AND date < ?", from, to).
		Find(&apps).Error
	return apps, err
}

func (r *AppointmentResolver) workHours(ctx context.Context) (int, error) {
	var cfg models.SiteConfig
	if err := r.DB.WithContext(ctx).First(&cfg, 1).Error; err != nil {
		return 0, err
	}
	return cfg.ClosingAt - cfg.StartingAt, nil
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
