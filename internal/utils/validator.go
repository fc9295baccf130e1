package utils

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ValidationErrorDetail represents the structure of a single validation error.
type ValidationErrorDetail struct {
	Field    string      `json:"field"`
	Message  string      `json:"message"`
	Expected string      `json:"expected"`
	Received interface{} `json:"received"`
}

// ValidationErrorData represents the data field in the validation error response.
type ValidationErrorData struct {
	Errors        []ValidationErrorDetail `json:"errors"`
	Documentation string                  `json:"documentation"`
}

const DocumentationLink = "/swagger/index.html"

// BindAndValidate binds the request body to the given object and validates it.
// If validation fails, it sends a formatted error response and returns false.
// If validation succeeds, it returns true.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var validationErrors []ValidationErrorDetail

		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, e := range errs {
				detail := ValidationErrorDetail{
					Field:    e.Field(),
					Message:  fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", e.Field(), e.Tag()),
					Expected: e.Param(),
					Received: e.Value(),
				}

				if detail.Expected == "" {
					detail.Expected = e.Tag()
				}

				switch e.Tag() {
				case "required":
					detail.Message = fmt.Sprintf("Field '%s' is required", e.Field())
					detail.Expected = "not null"
				case "email":
					detail.Message = fmt.Sprintf("Field '%s' must be a valid email address", e.Field())
					detail.Expected = "email format"
				case "min":
					detail.Message = fmt.Sprintf("Field '%s' must be at least %s characters long", e.Field(), e.Param())
					detail.Expected = fmt.Sprintf("min length %s", e.Param())
				case "max":
					detail.Message = fmt.Sprintf("Field '%s' must be at most %s characters long", e.Field(), e.Param())
					detail.Expected = fmt.Sprintf("max length %s", e.Param())
				case "gt":
					detail.Message = fmt.Sprintf("Field '%s' must be greater than %s", e.Field(), e.Param())
					detail.Expected = fmt.Sprintf("> %s", e.Param())
				}

				validationErrors = append(validationErrors, detail)
			}
		} else if jsonErr, ok := err.(*json.UnmarshalTypeError); ok {
			detail := ValidationErrorDetail{
				Field:    jsonErr.Field,
				Message:  fmt.Sprintf("Field '%s' has invalid type", jsonErr.Field),
				Expected: jsonErr.Type.String(),
				Received: jsonErr.Value,
			}
			validationErrors = append(validationErrors, detail)
		} else {
			detail := ValidationErrorDetail{
				Field:    "body",
				Message:  "Malformed JSON or invalid request body",
				Expected: "valid JSON",
				Received: "invalid",
			}
			validationErrors = append(validationErrors, detail)
		}

		response := Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request parameters",
			Data: ValidationErrorData{
				Errors:        validationErrors,
				Documentation: DocumentationLink,
			},
		}

		c.JSON(http.StatusBadRequest, response)
		return false
	}
	return true
}
