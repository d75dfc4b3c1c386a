package items

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	barcodePrefix   = "ITEM"
	qrPayloadPrefix = "INV"
)

// FormatBarcode deriva el barcode de un id: ITEM + id con 6 dígitos (42 -> ITEM000042).
// Ids de más de 6 dígitos no se truncan, así el formato sigue siendo inyectivo.
func FormatBarcode(id int64) string {
	return fmt.Sprintf("%s%06d", barcodePrefix, id)
}

// FormatQRPayload arma el texto que va dentro del QR: INV:<id>:<name>.
// ParseQRPayload lo recupera para cualquier id >= 0.
func FormatQRPayload(id int64, name string) string {
	return fmt.Sprintf("%s:%d:%s", qrPayloadPrefix, id, name)
}

// ParseQRPayload es la inversa de FormatQRPayload.
// Corta solo en los dos primeros ':' para que los nombres con ':' sobrevivan.
func ParseQRPayload(payload string) (int64, string, bool) {
	parts := strings.SplitN(payload, ":", 3)
	if len(parts) != 3 || parts[0] != qrPayloadPrefix {
		return 0, "", false
	}

	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id < 0 {
		return 0, "", false
	}
	return id, parts[2], true
}
