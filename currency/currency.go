package currency

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Abraxas-365/craftable/errx"
)

// Rate es la tasa de cambio de una moneda respecto a la moneda base del sistema
type Rate struct {
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	Rate      float64   `db:"rate" json:"rate"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Convert expresa amount (en moneda base) en esta moneda
func (r *Rate) Convert(amount float64) float64 {
	return amount * r.Rate
}

// NormalizeCode valida un código ISO 4217 y lo retorna en mayúsculas
func NormalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", ErrInvalidCode().WithDetail("code", code)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", ErrInvalidCode().WithDetail("code", code)
		}
	}
	return code, nil
}

// RateRepository resuelve "tasa de cambio por código"
type RateRepository interface {
	FindByCode(ctx context.Context, code string) (*Rate, error)
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("CURRENCY")

var (
	CodeRateNotFound = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Currency rate not found")
	CodeInvalidCode  = ErrRegistry.Register("INVALID_CODE", errx.TypeValidation, http.StatusBadRequest, "Invalid currency code")
)

func ErrRateNotFound() *errx.Error {
	return ErrRegistry.New(CodeRateNotFound)
}

func ErrInvalidCode() *errx.Error {
	return ErrRegistry.New(CodeInvalidCode)
}
