package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/ManuGH/jobjump/internal/domain"
)

type companyRow struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	LogoURL   string `db:"logo_url"`
	CreatedAt int64  `db:"created_at"`
}

func (r companyRow) toDomain() domain.Company {
	return domain.Company{ID: r.ID, Name: r.Name, LogoURL: r.LogoURL, CreatedAt: fromMillis(r.CreatedAt)}
}

// ListCompanies returns all companies ordered by name.
func (s *Store) ListCompanies(ctx context.Context, _ domain.Caller) ([]domain.Company, error) {
	var rows []companyRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, name, logo_url, created_at FROM companies ORDER BY name COLLATE NOCASE, id`); err != nil {
		return nil, fmt.Errorf("listing companies: %w", err)
	}
	out := make([]domain.Company, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

// AddCompany inserts a company.
func (s *Store) AddCompany(ctx context.Context, c domain.Caller, in domain.NewCompany) (domain.Company, error) {
	if err := requireUser(c); err != nil {
		return domain.Company{}, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Company{}, fmt.Errorf("company name is empty: %w", domain.ErrInvalid)
	}

	row := companyRow{Name: name, LogoURL: in.LogoURL, CreatedAt: s.stamp()}
	res, err := s.db.NamedExecContext(ctx,
		`INSERT INTO companies (name, logo_url, created_at) VALUES (:name, :logo_url, :created_at)`, row)
	if err != nil {
		return domain.Company{}, fmt.Errorf("adding company: %w", err)
	}
	if row.ID, err = res.LastInsertId(); err != nil {
		return domain.Company{}, fmt.Errorf("adding company: %w", err)
	}
	return row.toDomain(), nil
}
