package service

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/music-school-admin/internal/model"
)

const yearMonthTag = "yearmonth"

// newValidator builds the validator used for service inputs.  Field names
// in errors follow the JSON tags.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation(yearMonthTag, func(fl validator.FieldLevel) bool {
		return model.ValidMonth(fl.Field().String())
	})
	return v
}

// failedTag returns the tag of the first failed rule, or "" when err is
// not a validation failure.
func failedTag(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return ""
	}
	return verrs[0].Tag()
}

// InstrumentInput carries the writable fields of an instrument.
type InstrumentInput struct {
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=1"`
}

func (in *InstrumentInput) normalize() { in.Name = strings.TrimSpace(in.Name) }

// StudentInput carries the writable fields of a student.
type StudentInput struct {
	Name         string `json:"name" validate:"required"`
	Age          int    `json:"age" validate:"gt=0"`
	InstrumentID string `json:"instrument_id" validate:"required"`
}

func (in *StudentInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.InstrumentID = strings.TrimSpace(in.InstrumentID)
}

// PaymentInput carries the fields of a new payment.
type PaymentInput struct {
	StudentID   string `json:"student_id" validate:"required"`
	AmountCents int64  `json:"amount_cents" validate:"gt=0"`
	Month       string `json:"month" validate:"required,yearmonth"`
}

func (in *PaymentInput) normalize() {
	in.StudentID = strings.TrimSpace(in.StudentID)
	in.Month = strings.TrimSpace(in.Month)
}

// AttendanceInput marks a student present or absent on Date.  Date is
// required here; callers decide what "today" means.
type AttendanceInput struct {
	StudentID string          `json:"student_id" validate:"required"`
	Present   *bool           `json:"present" validate:"required"`
	Date      model.CivilDate `json:"date"`
}
