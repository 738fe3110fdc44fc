package currencyinfra

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/Abraxas-365/craftable/logx"
	"github.com/Abraxas-365/skyport/currency"
	"github.com/jmoiron/sqlx"
)

// PostgresRateRepository lee las tasas de la tabla currency_rates
type PostgresRateRepository struct {
	db *sqlx.DB
}

func NewPostgresRateRepository(db *sqlx.DB) *PostgresRateRepository {
	return &PostgresRateRepository{db: db}
}

// FindByCode busca la tasa por código ISO
func (r *PostgresRateRepository) FindByCode(ctx context.Context, code string) (*currency.Rate, error) {
	query := `
		SELECT code, name, rate, updated_at
		FROM currency_rates
		WHERE code = $1`

	var rate currency.Rate
	if err := r.db.GetContext(ctx, &rate, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, currency.ErrRateNotFound().WithDetail("code", code)
		}
		logx.Error("Error fetching currency rate %s: %v", code, err)
		return nil, errx.Wrap(err, "failed to find currency rate", errx.TypeInternal).
			WithDetail("code", code)
	}

	return &rate, nil
}
