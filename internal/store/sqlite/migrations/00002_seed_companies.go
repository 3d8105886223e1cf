// Package migrations holds Go schema migrations registered with goose.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upSeedCompanies, downSeedCompanies)
}

// seedCompanies mirrors the logo strip on the landing page so a fresh local
// database has something to select on the post-job form.
var seedCompanies = []struct{ name, logo string }{
	{"Amazon", "/static/companies/amazon.svg"},
	{"Atlassian", "/static/companies/atlassian.svg"},
	{"Google", "/static/companies/google.svg"},
	{"IBM", "/static/companies/ibm.svg"},
	{"Meta", "/static/companies/meta.svg"},
	{"Microsoft", "/static/companies/microsoft.svg"},
	{"Netflix", "/static/companies/netflix.svg"},
	{"Uber", "/static/companies/uber.svg"},
}

func upSeedCompanies(ctx context.Context, tx *sql.Tx) error {
	now := time.Now().UnixMilli()
	for _, c := range seedCompanies {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO companies (name, logo_url, created_at) VALUES (?, ?, ?)`,
			c.name, c.logo, now,
		); err != nil {
			return fmt.Errorf("seeding company %s: %w", c.name, err)
		}
	}
	return nil
}

func downSeedCompanies(ctx context.Context, tx *sql.Tx) error {
	for _, c := range seedCompanies {
		if _, err := tx.ExecContext(ctx, `DELETE FROM companies WHERE name = ? AND logo_url = ?`, c.name, c.logo); err != nil {
			return fmt.Errorf("removing company %s: %w", c.name, err)
		}
	}
	return nil
}
