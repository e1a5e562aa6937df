// Package httpx holds small helpers shared by the HTTP handler packages:
// request body validation and pagination parsing.
package httpx

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/openhire/openhire/pkg/errx"
	"github.com/openhire/openhire/pkg/kernel"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrRegistry holds the transport-level error codes.
var ErrRegistry = errx.NewRegistry("HTTP")

var (
	CodeInvalidBody      = ErrRegistry.Register("INVALID_BODY", errx.TypeValidation, http.StatusBadRequest, "Request body could not be parsed")
	CodeValidationFailed = ErrRegistry.Register("VALIDATION_FAILED", errx.TypeValidation, http.StatusBadRequest, "Request validation failed")
	CodeNotFound         = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Route not found")
)

func ErrInvalidBody() *errx.Error { return ErrRegistry.New(CodeInvalidBody) }
func ErrNotFound() *errx.Error    { return ErrRegistry.New(CodeNotFound) }

// ParseBody decodes and validates a JSON request body into dst.
func ParseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return ErrInvalidBody().WithDetail("error", err.Error())
	}
	return ValidateStruct(dst)
}

// ValidateStruct runs the validator tags of dst, mapping failures to a 400
// with one detail entry per offending field.
func ValidateStruct(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ErrRegistry.NewWithCause(CodeValidationFailed, err)
	}

	e := ErrRegistry.New(CodeValidationFailed)
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		if fe.Param() != "" {
			e = e.WithDetail(field, fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param()))
		} else {
			e = e.WithDetail(field, fmt.Sprintf("failed %s", fe.Tag()))
		}
	}
	return e
}

// ParsePagination reads ?page= and ?page_size= with sane defaults.
func ParsePagination(c *fiber.Ctx) kernel.PaginationOptions {
	return kernel.PaginationOptions{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 20),
	}.Normalize()
}
