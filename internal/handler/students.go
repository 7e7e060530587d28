package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/music-school-admin/internal/service"
)

func (h *SchoolHandler) ListStudents(c echo.Context) error {
    items, err := h.svc.ListStudents(c.Request().Context())
    if err != nil {
        return respondError(c, "list students", err)
    }
    return c.JSON(http.StatusOK, items)
}

func (h *SchoolHandler) GetStudent(c echo.Context) error {
    st, err := h.svc.GetStudent(c.Request().Context(), c.Param("id"))
    if err != nil {
        return respondError(c, "get student", err)
    }
    return c.JSON(http.StatusOK, st)
}

// CreateStudent enrols a student on an instrument.  The first monthly
// payment is billed in the same step.
func (h *SchoolHandler) CreateStudent(c echo.Context) error {
    var body service.StudentInput
    if ok, err := bind(c, &body); !ok {
        return err
    }
    st, err := h.svc.CreateStudent(c.Request().Context(), body)
    if err != nil {
        return respondError(c, "create student", err)
    }
    return c.JSON(http.StatusCreated, st)
}

func (h *SchoolHandler) UpdateStudent(c echo.Context) error {
    var body service.StudentInput
    if ok, err := bind(c, &body); !ok {
        return err
    }
    st, err := h.svc.UpdateStudent(c.Request().Context(), c.Param("id"), body)
    if err != nil {
        return respondError(c, "update student", err)
    }
    return c.JSON(http.StatusOK, st)
}

// DeleteStudent removes the student with their attendance and payments.
func (h *SchoolHandler) DeleteStudent(c echo.Context) error {
    if err := h.svc.DeleteStudent(c.Request().Context(), c.Param("id")); err != nil {
        return respondError(c, "delete student", err)
    }
    return message(c, "Aluno excluído com sucesso")
}
