package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/music-school-admin/internal/service"
)

func paymentFilter(c echo.Context) service.PaymentFilter {
    return service.PaymentFilter{Month: c.QueryParam("month"), StudentID: c.QueryParam("student_id")}
}

// ListPayments handles GET /v1/payments?month=YYYY-MM&student_id=.
func (h *SchoolHandler) ListPayments(c echo.Context) error {
    items, err := h.svc.ListPayments(c.Request().Context(), paymentFilter(c))
    if err != nil {
        return respondError(c, "list payments", err)
    }
    return c.JSON(http.StatusOK, items)
}

// CreatePayment handles POST /v1/payments.  A second payment for the same
// student and month is a 409.
func (h *SchoolHandler) CreatePayment(c echo.Context) error {
    var body service.PaymentInput
    if ok, err := bind(c, &body); !ok {
        return err
    }
    p, err := h.svc.CreatePayment(c.Request().Context(), body)
    if err != nil {
        return respondError(c, "create payment", err)
    }
    return c.JSON(http.StatusCreated, p)
}

// UpdatePayment handles PUT /v1/payments/:id with {"paid": bool}.
func (h *SchoolHandler) UpdatePayment(c echo.Context) error {
    var body struct {
        Paid *bool `json:"paid"`
    }
    if ok, err := bind(c, &body); !ok {
        return err
    }
    p, err := h.svc.SetPaymentPaid(c.Request().Context(), c.Param("id"), body.Paid)
    if err != nil {
        return respondError(c, "update payment", err)
    }
    return c.JSON(http.StatusOK, p)
}

// PaymentReport handles GET /v1/payments/report with the list filters.
func (h *SchoolHandler) PaymentReport(c echo.Context) error {
    rep, err := h.svc.PaymentReport(c.Request().Context(), paymentFilter(c))
    if err != nil {
        return respondError(c, "payment report", err)
    }
    return c.JSON(http.StatusOK, rep)
}
