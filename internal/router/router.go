package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/music-school-admin/internal/handler"
)

// RegisterRoutes registers the probes.  db may be nil when the in-memory
// store is used.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
    e.GET("/healthz", handler.Health)
    e.GET("/readyz", handler.Ready(db))
}

// RegisterSchool registers the school resources under /v1.  Updates are
// full replacements and only answer PUT.  mws run on
// every route of the group, in order (e.g. rate limit, cache invalidation,
// response cache).
func RegisterSchool(e *echo.Echo, h *handler.SchoolHandler, mws ...echo.MiddlewareFunc) *echo.Group {
    g := e.Group("/v1", mws...)

    // ---- Instruments ----
    g.GET("/instruments", h.ListInstruments)
    g.POST("/instruments", h.CreateInstrument)
    g.GET("/instruments/:id", h.GetInstrument)
    g.PUT("/instruments/:id", h.UpdateInstrument)
    g.DELETE("/instruments/:id", h.DeleteInstrument)

    // ---- Students ----
    g.GET("/students", h.ListStudents)
    g.POST("/students", h.CreateStudent)
    g.GET("/students/:id", h.GetStudent)
    g.PUT("/students/:id", h.UpdateStudent)
    g.DELETE("/students/:id", h.DeleteStudent)

    // ---- Payments ----
    g.GET("/payments", h.ListPayments)
    g.POST("/payments", h.CreatePayment)
    g.GET("/payments/report", h.PaymentReport) // static segment wins over :id
    g.PUT("/payments/:id", h.UpdatePayment)

    // ---- Attendance ----
    g.GET("/attendance", h.ListAttendance)
    g.GET("/attendance/report", h.AttendanceReport)
    g.POST("/attendance", h.MarkAttendance)

    return g
}
