package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"airbnb-dashboard/models"
	"airbnb-dashboard/services"
	"airbnb-dashboard/utils"
)

// controlsRequest is the wire form of services.Controls. It is pre-filled
// with the session's controls so that absent parameters keep their values.
type controlsRequest struct {
	Extended      bool    `query:"extended" json:"extended"`
	PriceRange    string  `query:"range" json:"range"`
	Neighbourhood string  `query:"neighbourhood" json:"neighbourhood"`
	RoomType      string  `query:"room_type" json:"room_type"`
	Zoom          float64 `query:"zoom" json:"zoom" validate:"min=10,max=15,step=0.5"`
	Radius        float64 `query:"radius" json:"radius" validate:"min=15,max=65,step=5"`
	SortByPrice   bool    `query:"sort" json:"sort"`
}

func newControlsRequest(c services.Controls) controlsRequest {
	return controlsRequest{
		Extended:      c.Extended,
		PriceRange:    c.PriceRange,
		Neighbourhood: c.Neighbourhood,
		RoomType:      string(c.RoomType),
		Zoom:          c.Zoom,
		Radius:        c.Radius,
		SortByPrice:   c.SortByPrice,
	}
}

func (r controlsRequest) controls() services.Controls {
	return services.Controls{
		Extended:      r.Extended,
		PriceRange:    r.PriceRange,
		Neighbourhood: r.Neighbourhood,
		RoomType:      models.RoomType(r.RoomType),
		Zoom:          r.Zoom,
		Radius:        r.Radius,
		SortByPrice:   r.SortByPrice,
	}
}

// RequestValidator adapts go-playground/validator to echo. Failures come
// back as *models.InvalidCategoryError so they map to 422.
type RequestValidator struct {
	validate *validator.Validate
}

func NewValidator() *RequestValidator {
	v := utils.NewValidator()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("query"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &RequestValidator{validate: v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	err := rv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &models.InvalidCategoryError{Field: fe.Field(), Value: fmt.Sprint(fe.Value())}
	}
	return err
}

// RequestBinder binds path, query and body values, then validates the result.
type RequestBinder struct {
	echo.DefaultBinder
}

func NewBinder() *RequestBinder {
	return &RequestBinder{}
}

func (b *RequestBinder) Bind(i interface{}, c echo.Context) error {
	if err := b.DefaultBinder.Bind(i, c); err != nil {
		return err
	}
	return c.Validate(i)
}
