package barcode

import "strings"

// IsValidBarcode acepta solo dígitos ASCII (después de trim). Vacío no es válido.
func IsValidBarcode(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}
