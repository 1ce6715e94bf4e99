// Package handler implements the HTTP endpoints. Every response uses the
// shared JSON envelope: {"success":true,"data":...} on success and
// {"success":false,"error":{"code","message"}} on failure.
package handler

import "github.com/labstack/echo/v4"

// Error codes used across the API.
const (
	codeValidation      = "VALIDATION_ERROR"
	codeConflict        = "CONFLICT"
	codeNotFound        = "NOT_FOUND"
	codeMaterialMissing = "MATERIAL_NOT_FOUND"
	codeUserMissing     = "USER_NOT_FOUND"
	codeInternal        = "INTERNAL_ERROR"
	codeRegisterFailed  = "REGISTRATION_FAILED"
	codeLoginFailed     = "LOGIN_FAILED"
	codeBadRefresh      = "INVALID_REFRESH_TOKEN"
)

func respond(c echo.Context, status int, data any) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func respondErr(c echo.Context, status int, code, message string) error {
	return c.JSON(status, echo.Map{
		"success": false,
		"error":   echo.Map{"code": code, "message": message},
	})
}
