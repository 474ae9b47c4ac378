package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/huangsam/gapcheck/schema"
)

// validate is shared by policy and indexer validation; it is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("monthday", isMonthDay)
	return v
}

// isMonthDay accepts MM-DD strings.
func isMonthDay(fl validator.FieldLevel) bool {
	_, _, err := schema.ParseMonthDay(fl.Field().String())
	return err == nil
}

// validateStruct runs struct-tag validation and wraps failures in sentinel.
func validateStruct(sentinel error, s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", sentinel, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s (got %v)", fe.Field(), fe.Tag(), fe.Value()))
		}
	}
	return fmt.Errorf("%w: %s", sentinel, strings.Join(msgs, "; "))
}
