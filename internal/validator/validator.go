// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"reflect"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// tickerRegex matches exchange symbols such as AAPL, BRK.B, ^GSPC, BTC-USD and EURUSD=X.
var tickerRegex = regexp.MustCompile(`^\^?[A-Za-z0-9]+([.\-=][A-Za-z0-9]+)*=?$`)

const maxTickerLength = 15

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Configure(v)
	}
}

// Configure installs the custom rules on v.
func Configure(v *validator.Validate) {
	_ = v.RegisterValidation("ticker", validateTicker)
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
}

func validateTicker(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return len(s) <= maxTickerLength && tickerRegex.MatchString(s)
}

// decimalValue lets numeric rules like gt=0 apply to decimal fields.
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}
