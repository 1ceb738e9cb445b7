package utils

import (
	stderrors "errors"

	"vaultpay/internal/errors"

	"github.com/gofiber/fiber/v2"
)

// Respond sends a JSON response with the specified status code.
func Respond(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(data)
}

// Success sends a successful JSON response.
func Success(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusOK, data)
}

// BadRequest sends a JSON error response with status 400.
func BadRequest(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusBadRequest, fiber.Map{"error": message})
}

// Unauthorized sends a JSON error response with status 401.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusUnauthorized, fiber.Map{"error": message})
}

// Forbidden sends a JSON error response with status 403.
func Forbidden(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusForbidden, fiber.Map{"error": message})
}

// NotFound sends a JSON error response with status 404.
func NotFound(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusNotFound, fiber.Map{"error": message})
}

// InternalError sends a JSON error response with status 500.
func InternalError(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusInternalServerError, fiber.Map{"error": message})
}

// DomainErrorResponse maps a service error to its stable code and HTTP
// status. Unknown errors surface as a generic internal error so no
// implementation detail leaks to callers.
func DomainErrorResponse(c *fiber.Ctx, err error) error {
	var derr *errors.DomainError
	if !stderrors.As(err, &derr) {
		return Respond(c, fiber.StatusInternalServerError, fiber.Map{
			"code":  errors.CodeInternal,
			"error": "internal error",
		})
	}

	return Respond(c, statusForCode(derr.Code), fiber.Map{
		"code":  derr.Code,
		"error": derr.Message,
	})
}

func statusForCode(code string) int {
	switch code {
	case errors.CodeNotFound:
		return fiber.StatusNotFound
	case errors.CodeValidation, errors.CodeUnbalancedEntry:
		return fiber.StatusBadRequest
	case errors.CodeInsufficientFunds, errors.CodeWalletFrozen, errors.CodeConflict:
		return fiber.StatusConflict
	case errors.CodeAccessDenied, errors.CodeSignatureInvalid:
		return fiber.StatusForbidden
	case errors.CodePINLocked, errors.CodeRateLimited:
		return fiber.StatusTooManyRequests
	case errors.CodeLockTimeout:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
