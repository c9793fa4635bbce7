package models

import (
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// NewValidator returns a validator configured for the models in this package.
func NewValidator() *validator.Validate {
	v := validator.New()
	RegisterWithValidator(v)
	return v
}

/*
RegisterWithValidator register with the validator the custom types used by the models

	@param v *validator.Validate - the validator to register against
*/
func RegisterWithValidator(v *validator.Validate) {
	// Report field names as they appear on the wire.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Numeric tags (gte, lte, ...) on decimals compare against the float value.
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
}

// decimalValue converts a decimal for the numeric tags. Values too small for a
// float64 keep their sign instead of collapsing to zero.
func decimalValue(field reflect.Value) interface{} {
	d, ok := field.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	f, _ := d.Float64()
	if f == 0 && !d.IsZero() {
		f = math.Copysign(math.SmallestNonzeroFloat64, float64(d.Sign()))
	}
	return f
}
