package webapi

import (
	"errors"

	"github.com/amirasaad/bankaccount/pkg/cqrs"
	"github.com/amirasaad/bankaccount/pkg/domain/account"
	"github.com/amirasaad/bankaccount/pkg/service/rules"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Response defines the standard API response structure for success cases.
type Response struct {
	Status  int    `json:"status"`         // HTTP status code
	Message string `json:"message"`        // Human-readable explanation
	Data    any    `json:"data,omitempty"` // Response data
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`     // A URI reference that identifies the problem type
	Title    string `json:"title"`              // Short, human-readable summary
	Status   int    `json:"status"`             // HTTP status code
	Detail   string `json:"detail,omitempty"`   // Human-readable explanation
	Instance string `json:"instance,omitempty"` // URI reference that identifies the specific occurrence
	Errors   any    `json:"errors,omitempty"`   // Optional: additional error details
}

// SuccessResponseJSON writes a success envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{Status: status, Message: message, Data: data})
}

// ErrorResponseJSON writes a response following RFC 9457 Problem Details.
func ErrorResponseJSON(c *fiber.Ctx, status int, title string, detail any) error {
	pd := ProblemDetails{
		Type:   "about:blank",
		Title:  title,
		Status: status,
	}
	if detail != nil {
		if s, ok := detail.(string); ok {
			pd.Detail = s
		} else {
			pd.Errors = detail
		}
	}
	pd.Instance = c.OriginalURL()
	c.Set(fiber.HeaderContentType, "application/problem+json")

	return c.Status(status).JSON(pd)
}

// CommandErrorJSON maps a command-execution error onto the wire: business
// rule and wrong-state rejections become client errors, conflicts become a
// retryable status, and technical failures become a generic server fault.
func CommandErrorJSON(c *fiber.Ctx, err error) error {
	var rejected *account.RejectedCommandError
	var insufficient *account.InsufficientFundsError
	var rule *rules.Error
	switch {
	case errors.As(err, &rejected):
		return ErrorResponseJSON(c, fiber.StatusUnprocessableEntity, "Rejected command", rejected.Error())
	case errors.As(err, &insufficient):
		return ErrorResponseJSON(c, fiber.StatusUnprocessableEntity, "Insufficient funds", insufficient.Error())
	case errors.As(err, &rule):
		return ErrorResponseJSON(c, fiber.StatusUnprocessableEntity, "Business rule violation", rule.Error())
	case errors.Is(err, cqrs.ErrAggregateConflict):
		return ErrorResponseJSON(c, fiber.StatusConflict, "Conflict", cqrs.ErrAggregateConflict.Error())
	case errors.Is(err, cqrs.ErrNotFound):
		return ErrorResponseJSON(c, fiber.StatusNotFound, "Not found", "account not found")
	default:
		// no payload detail leaked for technical failures
		return ErrorResponseJSON(c, fiber.StatusInternalServerError, "Internal Server Error", nil)
	}
}

// BindAndValidate parses the request body and validates it using
// go-playground/validator. Returns the populated struct, or writes an error
// response and returns nil.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		return nil, ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid request body", err.Error())
	}
	if err := validate.Struct(input); err != nil {
		return nil, ErrorResponseJSON(c, fiber.StatusBadRequest, "Validation failed", err.Error())
	}
	return &input, nil
}

var validate = validator.New()
