package handler

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Validator adapts go-playground/validator to echo.Validator.  Besides the
// built-in tags it knows "day" (a YYYY-MM-DD calendar date) and "roomtype".
type Validator struct {
	v *validator.Validate
}

// NewValidator registers the custom tags.
func NewValidator() *Validator {
	v := validator.New()
	if err := v.RegisterValidation("day", dayField); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("roomtype", roomTypeField); err != nil {
		panic(err)
	}
	return &Validator{v: v}
}

// Validate implements echo.Validator.
func (cv *Validator) Validate(i interface{}) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

func dayField(fl validator.FieldLevel) bool {
	_, err := model.ParseDay(fl.Field().String())
	return err == nil
}

func roomTypeField(fl validator.FieldLevel) bool {
	_, ok := model.ParseRoomType(fl.Field().String())
	return ok
}
