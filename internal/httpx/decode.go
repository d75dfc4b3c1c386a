package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxBodyBytes limita el body JSON. Las imágenes en base64 son lo más grande que recibimos.
const maxBodyBytes = 10 << 20

// ErrorInvalidJSON indica un body que no se pudo parsear.
var ErrorInvalidJSON = errors.New("invalid json body")

// DecodeJSON parsea el body en dst. Campos desconocidos se ignoran, basura al final no.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))

	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrorInvalidJSON, err)
	}
	// Un segundo Decode tiene que dar EOF: "{}{}" no es un body válido.
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: unexpected data after json object", ErrorInvalidJSON)
	}
	return nil
}
