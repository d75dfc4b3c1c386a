package barcode

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Lelo88/inventory-api-golang/internal/cache"
)

const cacheKeyPrefix = "inventory:render:"

// Service envuelve al Codec con un cache de PNGs ya renderizados.
// El render es determinista, así que la clave es el contenido más el tamaño pedido.
type Service struct {
	codec  *Codec
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewService crea el service. renderCache puede ser nil (sin cache).
func NewService(codec *Codec, renderCache cache.Cache, ttl time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{codec: codec, cache: renderCache, ttl: ttl, logger: logger}
}

func (service *Service) Barcode(ctx context.Context, text string) ([]byte, error) {
	return service.render(ctx, renderKey("code128", text, 0, 0), func() ([]byte, error) {
		return service.codec.EncodeBarcode(text)
	})
}

func (service *Service) QR(ctx context.Context, text string, width, height int) ([]byte, error) {
	return service.render(ctx, renderKey("qr", text, width, height), func() ([]byte, error) {
		return service.codec.EncodeQR(text, width, height)
	})
}

func (service *Service) QRLabel(ctx context.Context, payload string) ([]byte, error) {
	return service.render(ctx, renderKey("label", payload, LabelSize, LabelSize), func() ([]byte, error) {
		return service.codec.EncodeQRLabel(payload)
	})
}

// Decode no se cachea: cada imagen subida es distinta.
func (service *Service) Decode(data []byte) (string, error) {
	return service.codec.Decode(data)
}

// render consulta el cache antes de generar. Un cache caído no rompe la request.
func (service *Service) render(ctx context.Context, key string, encode func() ([]byte, error)) ([]byte, error) {
	if service.cache != nil {
		cached, err := service.cache.Get(ctx, key)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			service.logger.Warn("render cache get failed", zap.String("key", key), zap.Error(err))
		}
	}

	data, err := encode()
	if err != nil {
		return nil, err
	}

	if service.cache != nil {
		if err := service.cache.Set(ctx, key, data, service.ttl); err != nil {
			service.logger.Warn("render cache set failed", zap.String("key", key), zap.Error(err))
		}
	}
	return data, nil
}

// renderKey hashea el texto: puede ser largo o traer caracteres raros para Redis.
func renderKey(kind, text string, width, height int) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%s%s:%dx%d:%s", cacheKeyPrefix, kind, width, height, hex.EncodeToString(sum[:]))
}
