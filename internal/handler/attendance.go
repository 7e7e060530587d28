package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/music-school-admin/internal/service"
)

func (h *SchoolHandler) attendanceFilter(c echo.Context) (service.AttendanceFilter, error) {
    f := service.AttendanceFilter{StudentID: c.QueryParam("student_id"), Month: c.QueryParam("month")}
    if raw := strings.TrimSpace(c.QueryParam("date")); raw != "" {
        day, err := h.svc.ParseDate(raw)
        if err != nil {
            return f, err
        }
        f.Date = &day
    }
    return f, nil
}

// ListAttendance handles GET /v1/attendance?date=YYYY-MM-DD&month=YYYY-MM&student_id=.
func (h *SchoolHandler) ListAttendance(c echo.Context) error {
    f, err := h.attendanceFilter(c)
    if err != nil {
        return respondError(c, "list attendance", err)
    }
    items, err := h.svc.ListAttendance(c.Request().Context(), f)
    if err != nil {
        return respondError(c, "list attendance", err)
    }
    return c.JSON(http.StatusOK, items)
}

// AttendanceReport handles GET /v1/attendance/report with the same filters
// as ListAttendance.
func (h *SchoolHandler) AttendanceReport(c echo.Context) error {
    f, err := h.attendanceFilter(c)
    if err != nil {
        return respondError(c, "attendance report", err)
    }
    rep, err := h.svc.AttendanceReport(c.Request().Context(), f)
    if err != nil {
        return respondError(c, "attendance report", err)
    }
    return c.JSON(http.StatusOK, rep)
}

// MarkAttendance handles POST /v1/attendance.  Without a date the current
// day in the school time zone is used.  A new row answers 201, an
// overwritten one 200.
func (h *SchoolHandler) MarkAttendance(c echo.Context) error {
    var body struct {
        StudentID string `json:"student_id"`
        Present   *bool  `json:"present"`
        Date      string `json:"date"`
    }
    if ok, err := bind(c, &body); !ok {
        return err
    }
    in := service.AttendanceInput{StudentID: body.StudentID, Present: body.Present}
    if strings.TrimSpace(body.Date) == "" {
        in.Date = h.svc.Today()
    } else {
        day, err := h.svc.ParseDate(body.Date)
        if err != nil {
            return respondError(c, "mark attendance", err)
        }
        in.Date = day
    }
    att, created, err := h.svc.MarkAttendance(c.Request().Context(), in)
    if err != nil {
        return respondError(c, "mark attendance", err)
    }
    status := http.StatusOK
    if created {
        status = http.StatusCreated
    }
    return c.JSON(status, att)
}
