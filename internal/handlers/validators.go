package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// registerValidators installs custom binding validations on gin's validator
// engine. The money validation accepts positive amounts with at most two
// decimal places, the precision the ledger stores.
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("money", validMoney)
}

func validMoney(fl validator.FieldLevel) bool {
	amount, ok := fl.Field().Interface().(decimal.Decimal)
	if !ok {
		return false
	}
	return amount.IsPositive() && amount.Equal(amount.Round(2))
}
