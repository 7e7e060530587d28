package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/music-school-admin/internal/service"
)

const msgInvalidBody = "Corpo da requisição inválido"

// SchoolHandler exposes the school service over HTTP.
type SchoolHandler struct {
    svc *service.Service
}

// NewSchoolHandler panics if svc is nil.
func NewSchoolHandler(svc *service.Service) *SchoolHandler {
    if svc == nil {
        panic("nil service passed to NewSchoolHandler")
    }
    return &SchoolHandler{svc: svc}
}

// statusOf maps a service error kind to an HTTP status code.
func statusOf(k service.Kind) int {
    switch k {
    case service.KindValidation:
        return http.StatusBadRequest
    case service.KindNotFound:
        return http.StatusNotFound
    case service.KindConflict:
        return http.StatusConflict
    default:
        return http.StatusInternalServerError
    }
}

// respondError writes {"error": message}.  Internal failures are logged
// with the operation name; their cause never reaches the client.
func respondError(c echo.Context, op string, err error) error {
    status := statusOf(service.KindOf(err))
    if status == http.StatusInternalServerError {
        c.Logger().Errorf("%s: %v", op, err)
    }
    return c.JSON(status, echo.Map{"error": service.MessageOf(err)})
}

// bind decodes the request body into dst and writes a 400 on failure.
// The returned bool reports whether the handler should continue.
func bind(c echo.Context, dst any) (bool, error) {
    if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
        return false, c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidBody})
    }
    return true, nil
}

func message(c echo.Context, text string) error {
    return c.JSON(http.StatusOK, echo.Map{"message": text})
}
