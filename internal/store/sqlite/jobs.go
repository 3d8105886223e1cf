package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/ManuGH/jobjump/internal/domain"
)

type jobRow struct {
	ID           int64          `db:"id"`
	RecruiterID  string         `db:"recruiter_id"`
	Title        string         `db:"title"`
	Description  string         `db:"description"`
	Location     string         `db:"location"`
	CompanyID    int64          `db:"company_id"`
	Requirements string         `db:"requirements"`
	IsOpen       bool           `db:"is_open"`
	CreatedAt    int64          `db:"created_at"`
	CompanyName  sql.NullString `db:"company_name"`
	CompanyLogo  sql.NullString `db:"company_logo"`
	SavedID      sql.NullInt64  `db:"saved_id"`
}

func (r jobRow) toDomain() domain.Job {
	j := domain.Job{
		ID:           r.ID,
		RecruiterID:  r.RecruiterID,
		Title:        r.Title,
		Description:  r.Description,
		Location:     r.Location,
		CompanyID:    r.CompanyID,
		Requirements: r.Requirements,
		IsOpen:       r.IsOpen,
		CreatedAt:    fromMillis(r.CreatedAt),
	}
	if r.CompanyName.Valid {
		j.Company = &domain.Company{ID: r.CompanyID, Name: r.CompanyName.String, LogoURL: r.CompanyLogo.String}
	}
	if r.SavedID.Valid {
		j.Saved = []domain.SavedRef{{ID: r.SavedID.Int64}}
	}
	return j
}

const jobSelect = `
SELECT j.id, j.recruiter_id, j.title, j.description, j.location, j.company_id,
       j.requirements, j.is_open, j.created_at,
       c.name AS company_name, c.logo_url AS company_logo,
       (SELECT s.id FROM saved_jobs s WHERE s.job_id = j.id AND s.user_id = ?) AS saved_id
FROM jobs j
LEFT JOIN companies c ON c.id = j.company_id`

// ListJobs returns jobs matching the filter, newest first.
func (s *Store) ListJobs(ctx context.Context, c domain.Caller, f domain.JobFilter) ([]domain.Job, error) {
	f = f.Normalize()
	var (
		where []string
		args  = []any{c.UserID}
	)
	if f.Location != "" {
		where = append(where, "j.location = ?")
		args = append(args, f.Location)
	}
	if f.CompanyID != 0 {
		where = append(where, "j.company_id = ?")
		args = append(args, f.CompanyID)
	}
	if f.SearchQuery != "" {
		where = append(where, `j.title LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(f.SearchQuery))
	}

	query := jobSelect
	if len(where) > 0 {
		query += "\nWHERE " + strings.Join(where, " AND ")
	}
	query += "\nORDER BY j.created_at DESC, j.id DESC"

	var rows []jobRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	jobs := make([]domain.Job, len(rows))
	for i, r := range rows {
		jobs[i] = r.toDomain()
	}
	return jobs, nil
}

// GetJob returns a job with its company and applications.
func (s *Store) GetJob(ctx context.Context, c domain.Caller, id int64) (domain.Job, error) {
	job, err := s.getJob(ctx, s.db, c.UserID, id)
	if err != nil {
		return domain.Job{}, err
	}
	apps, err := s.applicationsFor(ctx, []int64{id})
	if err != nil {
		return domain.Job{}, err
	}
	job.Applications = apps[id]
	return job, nil
}

func (s *Store) getJob(ctx context.Context, q sqlx.QueryerContext, userID string, id int64) (domain.Job, error) {
	var r jobRow
	err := sqlx.GetContext(ctx, q, &r, jobSelect+"\nWHERE j.id = ?", userID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Job{}, notFound("job", id)
	}
	if err != nil {
		return domain.Job{}, fmt.Errorf("fetching job %d: %w", id, err)
	}
	return r.toDomain(), nil
}

// CreateJob inserts a job owned by the caller.
func (s *Store) CreateJob(ctx context.Context, c domain.Caller, in domain.NewJob) (domain.Job, error) {
	if err := requireUser(c); err != nil {
		return domain.Job{}, err
	}
	if in.RecruiterID == "" {
		in.RecruiterID = c.UserID
	}
	if in.RecruiterID != c.UserID {
		return domain.Job{}, fmt.Errorf("posting as %s: %w", in.RecruiterID, domain.ErrForbidden)
	}

	res, err := s.db.ExecContext(ctx, `
INSERT INTO jobs (recruiter_id, title, description, location, company_id, requirements, is_open, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.RecruiterID, in.Title, in.Description, in.Location, in.CompanyID, in.Requirements, in.IsOpen, s.stamp())
	if isConstraint(err) {
		return domain.Job{}, fmt.Errorf("creating job: %v: %w", err, domain.ErrInvalid)
	}
	if err != nil {
		return domain.Job{}, fmt.Errorf("creating job: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Job{}, fmt.Errorf("creating job: %w", err)
	}
	return s.getJob(ctx, s.db, c.UserID, id)
}

// UpdateHiringStatus sets is_open on a job the caller owns. No other column
// is written.
func (s *Store) UpdateHiringStatus(ctx context.Context, c domain.Caller, id int64, isOpen bool) (domain.Job, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Job{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.checkOwner(ctx, tx, c, id); err != nil {
		return domain.Job{}, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE jobs SET is_open = ? WHERE id = ?`, isOpen, id); err != nil {
		return domain.Job{}, fmt.Errorf("updating job %d: %w", id, err)
	}
	job, err := s.getJob(ctx, tx, c.UserID, id)
	if err != nil {
		return domain.Job{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Job{}, fmt.Errorf("commit: %w", err)
	}
	return job, nil
}

// DeleteJob removes a job the caller owns with its saves and applications.
func (s *Store) DeleteJob(ctx context.Context, c domain.Caller, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.checkOwner(ctx, tx, c, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting job %d: %w", id, err)
	}
	return tx.Commit()
}

// ListMyJobs returns the jobs a recruiter created with their applications.
func (s *Store) ListMyJobs(ctx context.Context, c domain.Caller, recruiterID string) ([]domain.Job, error) {
	var rows []jobRow
	err := s.db.SelectContext(ctx, &rows,
		jobSelect+"\nWHERE j.recruiter_id = ?\nORDER BY j.created_at DESC, j.id DESC", c.UserID, recruiterID)
	if err != nil {
		return nil, fmt.Errorf("listing jobs of %s: %w", recruiterID, err)
	}
	if len(rows) == 0 {
		return []domain.Job{}, nil
	}

	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	apps, err := s.applicationsFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	jobs := make([]domain.Job, len(rows))
	for i, r := range rows {
		jobs[i] = r.toDomain()
		jobs[i].Applications = apps[r.ID]
	}
	return jobs, nil
}

func (s *Store) checkOwner(ctx context.Context, tx *sqlx.Tx, c domain.Caller, id int64) error {
	var owner string
	err := tx.GetContext(ctx, &owner, `SELECT recruiter_id FROM jobs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("job", id)
	}
	if err != nil {
		return fmt.Errorf("fetching job %d: %w", id, err)
	}
	if c.UserID == "" || owner != c.UserID {
		return fmt.Errorf("job %d: %w", id, domain.ErrForbidden)
	}
	return nil
}
