package model

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/m-mizutani/goerr/v2"
)

// enumValue is implemented by every closed enum in the types package
type enumValue interface {
	IsValid() bool
}

var recordValidate *validator.Validate

func init() {
	recordValidate = validator.New()

	// enum accepts only members of the closed type the field is declared with
	if err := recordValidate.RegisterValidation("enum", validateEnum); err != nil {
		panic("failed to register enum validator: " + err.Error())
	}
}

func validateEnum(fl validator.FieldLevel) bool {
	v, ok := fl.Field().Interface().(enumValue)
	if !ok {
		return false
	}
	return v.IsValid()
}

// validateRecord runs the struct tag rules of a record and converts the first
// violation into ErrInvalidRecord carrying the field, rule and value.
func validateRecord(record any) error {
	err := recordValidate.Struct(record)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return goerr.Wrap(ErrInvalidRecord, "record validation failed",
			goerr.V(FieldKey, fe.Field()),
			goerr.V(RuleKey, fe.Tag()),
			goerr.V(FieldValueKey, fe.Value()),
		)
	}

	return goerr.Wrap(err, "failed to validate record")
}
