package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/malexstudio/site_api/internal/graphql"
	"github.com/malexstudio/site_api/internal/guard"
	"github.com/malexstudio/site_api/internal/handlers"
	"github.com/malexstudio/site_api/internal/roles"
)

type Deps struct {
	Guard *guard.Guard

	Auth        *handlers.AuthResolver
	Appointment *handlers.AppointmentResolver
	Work        *handlers.WorkResolver
	SiteConfig  *handlers.SiteConfigResolver
	Upload      *handlers.UploadResolver
}

// Register wires every top-level field into the executor, wrapping
// protected fields with the authorization guard, and mounts the GraphQL
// endpoint. createRT carries no guard: its gate is the sender-trust check
// inside the resolver, because a first-time identity has no token yet.
func Register(e *echo.Echo, d *Deps) *graphql.Executor {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	ex := graphql.NewExecutor()
	g := d.Guard

	protect := func(required roles.Role, field string, r graphql.Resolver) {
		ex.Register(field, g.Protect(required, field, r))
	}

	// auth
	ex.Register("createRT", d.Auth.CreateRT)
	protect(roles.Guest, "createAT", d.Auth.CreateAT)
	protect(roles.Guest, "adminLogin", d.Auth.AdminLogin)
	protect(roles.Admin, "adminLogout", d.Auth.AdminLogout)

	// appointments
	protect(roles.Admin, "appointment", d.Appointment.Appointment)
	protect(roles.Admin, "appointments", d.Appointment.Appointments)
	protect(roles.Admin, "createAppointment", d.Appointment.CreateAppointment)
	protect(roles.Admin, "updateAppointment", d.Appointment.UpdateAppointment)
	protect(roles.Admin, "updateManyAppointments", d.Appointment.UpdateManyAppointments)
	protect(roles.Guest, "busyTimesAtDay", d.Appointment.BusyTimesAtDay)
	protect(roles.Guest, "busyDaysAtMonth", d.Appointment.BusyDaysAtMonth)
	protect(roles.Guest, "isDayBusy", d.Appointment.IsDayBusy)

	// works
	protect(roles.Admin, "work", d.Work.Work)
	protect(roles.Admin, "works", d.Work.Works)
	protect(roles.Admin, "createWork", d.Work.CreateWork)
	protect(roles.Admin, "updateWork", d.Work.UpdateWork)
	protect(roles.Admin, "updateManyWorks", d.Work.UpdateManyWorks)
	protect(roles.Admin, "deleteWork", d.Work.DeleteWork)
	protect(roles.Admin, "deleteManyWorks", d.Work.DeleteManyWorks)
	protect(roles.Admin, "searchWorks", d.Work.SearchWorks)
	protect(roles.Guest, "getWorks", d.Work.GetWorks)
	protect(roles.Guest, "newWorks", d.Work.NewWorks)

	// site config
	protect(roles.Admin, "siteConfig", d.SiteConfig.SiteConfig)
	protect(roles.Admin, "updateSiteConfig", d.SiteConfig.UpdateSiteConfig)
	protect(roles.Guest, "contactData", d.SiteConfig.ContactData)

	// image upload
	protect(roles.Admin, "startImageUpload", d.Upload.StartImageUpload)
	protect(roles.Admin, "finalizeImageUpload", d.Upload.FinalizeImageUpload)

	e.POST("/graphql", ex.Handle)
	return ex
}
