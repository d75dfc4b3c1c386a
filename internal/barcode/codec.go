package barcode

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/datamatrix"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// Errores del codec. El handler los traduce a 400 y 422.
var (
	ErrorEncoding = errors.New("encoding error")
	ErrorDecode   = errors.New("decode error")
)

// Tamaños por defecto en píxeles.
const (
	DefaultBarcodeWidth  = 300
	DefaultBarcodeHeight = 100
	DefaultQRWidth       = 300
	DefaultQRHeight      = 300
	LabelSize            = 400
)

// Options define los tamaños de render. Valores <= 0 toman el default.
type Options struct {
	BarcodeWidth  int
	BarcodeHeight int
	QRWidth       int
	QRHeight      int
}

// Codec genera y lee códigos con gozxing (port de ZXing).
// No guarda estado mutable: se puede usar desde varias goroutines.
type Codec struct {
	options Options
}

func NewCodec(options Options) *Codec {
	options.BarcodeWidth = orDefault(options.BarcodeWidth, DefaultBarcodeWidth)
	options.BarcodeHeight = orDefault(options.BarcodeHeight, DefaultBarcodeHeight)
	options.QRWidth = orDefault(options.QRWidth, DefaultQRWidth)
	options.QRHeight = orDefault(options.QRHeight, DefaultQRHeight)
	return &Codec{options: options}
}

// EncodeBarcode genera un Code 128 en PNG. Code 128 solo cubre ASCII 0-127.
func (codec *Codec) EncodeBarcode(text string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrorEncoding)
	}
	for _, r := range text {
		if r > 127 {
			return nil, fmt.Errorf("%w: %q is not encodable in Code 128", ErrorEncoding, r)
		}
	}

	matrix, err := oned.NewCode128Writer().Encode(text, gozxing.BarcodeFormat_CODE_128,
		codec.options.BarcodeWidth, codec.options.BarcodeHeight, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrorEncoding, err)
	}
	return renderPNG(matrix)
}

// EncodeQR genera un QR en PNG. width/height <= 0 usan el tamaño configurado.
func (codec *Codec) EncodeQR(text string, width, height int) ([]byte, error) {
	return codec.encodeQR(text, orDefault(width, codec.options.QRWidth), orDefault(height, codec.options.QRHeight))
}

// EncodeQRLabel genera la etiqueta imprimible, siempre de LabelSize x LabelSize.
func (codec *Codec) EncodeQRLabel(payload string) ([]byte, error) {
	return codec.encodeQR(payload, LabelSize, LabelSize)
}

func (codec *Codec) encodeQR(text string, width, height int) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrorEncoding)
	}

	// UTF-8 explícito: los nombres de ítems pueden tener acentos.
	hints := map[gozxing.EncodeHintType]interface{}{
		gozxing.EncodeHintType_CHARACTER_SET: "UTF-8",
	}
	matrix, err := qrcode.NewQRCodeWriter().Encode(text, gozxing.BarcodeFormat_QR_CODE, width, height, hints)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrorEncoding, err)
	}
	return renderPNG(matrix)
}

type decodeAttempt struct {
	newReader func() gozxing.Reader
	hints     map[gozxing.DecodeHintType]interface{}
}

// decodeAttempts: primero QR como imagen limpia (lo que generamos nosotros),
// después QR con detector, cada lector 1-D y Data Matrix.
// gozxing no trae un lector 1-D multi formato, así que van uno por uno.
func decodeAttempts() []decodeAttempt {
	pure := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER:   true,
		gozxing.DecodeHintType_PURE_BARCODE: true,
	}
	harder := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}

	return []decodeAttempt{
		{newReader: newQRReader, hints: pure},
		{newReader: newQRReader, hints: harder},
		{newReader: func() gozxing.Reader { return oned.NewCode128Reader() }, hints: harder},
		{newReader: func() gozxing.Reader { return oned.NewMultiFormatUPCEANReader(harder) }, hints: harder},
		{newReader: func() gozxing.Reader { return oned.NewCode39Reader() }, hints: harder},
		{newReader: func() gozxing.Reader { return oned.NewCode93Reader() }, hints: harder},
		{newReader: func() gozxing.Reader { return oned.NewITFReader() }, hints: harder},
		{newReader: func() gozxing.Reader { return oned.NewCodaBarReader() }, hints: harder},
		{newReader: newDataMatrixReader, hints: pure},
		{newReader: newDataMatrixReader, hints: harder},
	}
}

func newQRReader() gozxing.Reader { return qrcode.NewQRCodeReader() }
func newDataMatrixReader() gozxing.Reader { return datamatrix.NewDataMatrixReader() }

// Decode lee el texto de una imagen PNG, JPEG o GIF.
func (codec *Codec) Decode(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty image", ErrorDecode)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: unsupported image: %v", ErrorDecode, err)
	}

	bitmap, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrorDecode, err)
	}

	// Los readers tienen estado interno: uno nuevo por intento.
	for _, attempt := range decodeAttempts() {
		result, err := attempt.newReader().Decode(bitmap, attempt.hints)
		if err == nil && result != nil {
			return result.GetText(), nil
		}
	}
	return "", fmt.Errorf("%w: no barcode or QR code found", ErrorDecode)
}

// EncodeBase64 es el transporte de imágenes en JSON.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeBase64 acepta también data URLs (data:image/png;base64,...).
func DecodeBase64(text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "data:") {
		if comma := strings.IndexByte(text, ','); comma >= 0 {
			text = text[comma+1:]
		}
	}
	if text == "" {
		return nil, fmt.Errorf("%w: empty image", ErrorDecode)
	}

	data, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", ErrorDecode, err)
	}
	return data, nil
}

// renderPNG pinta la matriz en blanco y negro.
func renderPNG(matrix *gozxing.BitMatrix) ([]byte, error) {
	width, height := matrix.GetWidth(), matrix.GetHeight()
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pixel := color.Gray{Y: 0xff}
			if matrix.Get(x, y) {
				pixel = color.Gray{Y: 0x00}
			}
			img.SetGray(x, y, pixel)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrorEncoding, err)
	}
	return buf.Bytes(), nil
}

func orDefault(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
