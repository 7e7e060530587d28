package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/music-school-admin/internal/service"
)

// ListInstruments handles GET /v1/instruments.
func (h *SchoolHandler) ListInstruments(c echo.Context) error {
    items, err := h.svc.ListInstruments(c.Request().Context())
    if err != nil {
        return respondError(c, "list instruments", err)
    }
    return c.JSON(http.StatusOK, items)
}

// GetInstrument handles GET /v1/instruments/:id.
func (h *SchoolHandler) GetInstrument(c echo.Context) error {
    in, err := h.svc.GetInstrument(c.Request().Context(), c.Param("id"))
    if err != nil {
        return respondError(c, "get instrument", err)
    }
    return c.JSON(http.StatusOK, in)
}

// CreateInstrument handles POST /v1/instruments and answers 201.
func (h *SchoolHandler) CreateInstrument(c echo.Context) error {
    var body service.InstrumentInput
    if ok, err := bind(c, &body); !ok {
        return err
    }
    in, err := h.svc.CreateInstrument(c.Request().Context(), body)
    if err != nil {
        return respondError(c, "create instrument", err)
    }
    return c.JSON(http.StatusCreated, in)
}

// UpdateInstrument handles PUT /v1/instruments/:id.  Lowering the
// quantity below the number of assigned students is a 409.
func (h *SchoolHandler) UpdateInstrument(c echo.Context) error {
    var body service.InstrumentInput
    if ok, err := bind(c, &body); !ok {
        return err
    }
    in, err := h.svc.UpdateInstrument(c.Request().Context(), c.Param("id"), body)
    if err != nil {
        return respondError(c, "update instrument", err)
    }
    return c.JSON(http.StatusOK, in)
}

// DeleteInstrument handles DELETE /v1/instruments/:id.
func (h *SchoolHandler) DeleteInstrument(c echo.Context) error {
    if err := h.svc.DeleteInstrument(c.Request().Context(), c.Param("id")); err != nil {
        return respondError(c, "delete instrument", err)
    }
    return message(c, "Instrumento excluído com sucesso")
}
