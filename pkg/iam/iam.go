// Package iam holds the identity modules: users, credentials and the
// token-based auth layer, plus the error codes they share.
package iam

import (
	"net/http"

	"github.com/openhire/openhire/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("IAM")

var (
	CodeUnauthorized = ErrRegistry.Register("UNAUTHORIZED", errx.TypeAuthorization, http.StatusUnauthorized, "Unauthorized")
	CodeInvalidToken = ErrRegistry.Register("INVALID_TOKEN", errx.TypeAuthorization, http.StatusUnauthorized, "Invalid or expired token")
	CodeAccessDenied = ErrRegistry.Register("ACCESS_DENIED", errx.TypeForbidden, http.StatusForbidden, "Access denied")
)

func ErrUnauthorized() *errx.Error { return ErrRegistry.New(CodeUnauthorized) }
func ErrInvalidToken() *errx.Error { return ErrRegistry.New(CodeInvalidToken) }
func ErrAccessDenied() *errx.Error { return ErrRegistry.New(CodeAccessDenied) }
