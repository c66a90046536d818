package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/t-azam747/SecureRelief-sub003/internal/errs"
	"github.com/t-azam747/SecureRelief-sub003/internal/siwe"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("wallet", func(fl validator.FieldLevel) bool {
		return siwe.IsHexAddress(fl.Field().String())
	})
	return v
}

// validationError converts validator output into field issues. Any other
// error is returned unchanged.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	issues := make([]errs.Issue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, errs.Issue{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: issueMessage(fe),
		})
	}
	return errs.Validation("Validation failed", issues)
}

func issueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "email":
		return "invalid email address"
	case "eqfield":
		return "passwords do not match"
	case "wallet":
		return "wallet address must be 0x followed by 40 hex characters"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func requireField(field, value string) error {
	if strings.TrimSpace(value) != "" {
		return nil
	}
	return errs.Validation(field+" is required", []errs.Issue{{
		Field:   field,
		Rule:    "required",
		Message: field + " is required",
	}})
}
