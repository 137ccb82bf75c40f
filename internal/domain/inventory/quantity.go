package inventory

import "github.com/shopspring/decimal"

// MaxQuantityDigits dígitos máximos de una cantidad (NUMERIC(10,0)).
const MaxQuantityDigits = 10

// ValidateQuantity valida una cantidad de stock: entera, no negativa y de a lo sumo 10 dígitos.
// Devuelve el mensaje de error o "" si es válida.
func ValidateQuantity(d decimal.Decimal) string {
	if d.IsNegative() {
		return "Ensure this value is greater than or equal to 0."
	}
	if !d.Equal(d.Truncate(0)) {
		return "Ensure that there are no more than 0 decimal places."
	}
	if len(d.Truncate(0).BigInt().String()) > MaxQuantityDigits {
		return "Ensure that there are no more than 10 digits in total."
	}
	return ""
}
