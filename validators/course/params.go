package courseValidator

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"lms/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

// newValidator reports fields by their json names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseID reads a positive integer route parameter
func parseID(c *fiber.Ctx, param string) (uint, bool) {
	raw := strings.TrimSpace(c.Params(param))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// IDParams validates the named route parameters as positive ids and stores
// each one in Locals under its own name.
func IDParams(params ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		errors := make(map[string]string)
		for _, p := range params {
			id, ok := parseID(c, p)
			if !ok {
				errors[p] = fmt.Sprintf("%s must be a positive integer!", p)
				continue
			}
			c.Locals(p, id)
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		return c.Next()
	}
}

// validationErrors turns validator output into the field -> message map of the response envelope
func validationErrors(err error) map[string]string {
	errors := make(map[string]string)
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		errors["body"] = err.Error()
		return errors
	}
	for _, fe := range fieldErrors {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			errors[field] = fmt.Sprintf("%s is required!", field)
		case "gte", "min":
			errors[field] = fmt.Sprintf("%s must be at least %s!", field, fe.Param())
		case "lte", "max":
			errors[field] = fmt.Sprintf("%s must be at most %s!", field, fe.Param())
		case "gt":
			errors[field] = fmt.Sprintf("%s must be greater than %s!", field, fe.Param())
		default:
			errors[field] = fmt.Sprintf("%s is invalid!", field)
		}
	}
	return errors
}
