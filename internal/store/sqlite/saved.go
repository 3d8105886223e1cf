package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ManuGH/jobjump/internal/domain"
)

// SaveJob toggles the bookmark of req.JobID for req.UserID. Saving twice or
// removing a missing bookmark is not an error.
func (s *Store) SaveJob(ctx context.Context, c domain.Caller, req domain.SaveRequest) (bool, error) {
	if err := requireUser(c); err != nil {
		return req.AlreadySaved, err
	}
	if req.UserID == "" {
		req.UserID = c.UserID
	}
	if req.UserID != c.UserID {
		return req.AlreadySaved, fmt.Errorf("saving for %s: %w", req.UserID, domain.ErrForbidden)
	}

	if req.AlreadySaved {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM saved_jobs WHERE job_id = ? AND user_id = ?`, req.JobID, req.UserID); err != nil {
			return true, fmt.Errorf("removing saved job %d: %w", req.JobID, err)
		}
		return false, nil
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO saved_jobs (user_id, job_id, created_at) VALUES (?, ?, ?) ON CONFLICT (user_id, job_id) DO NOTHING`,
		req.UserID, req.JobID, s.stamp())
	if isConstraint(err) {
		return false, notFound("job", req.JobID)
	}
	if err != nil {
		return false, fmt.Errorf("saving job %d: %w", req.JobID, err)
	}
	return true, nil
}

type savedRow struct {
	ID        int64  `db:"id"`
	UserID    string `db:"user_id"`
	JobID     int64  `db:"job_id"`
	CreatedAt int64  `db:"created_at"`

	Title        string         `db:"title"`
	RecruiterID  string         `db:"recruiter_id"`
	Description  string         `db:"description"`
	Location     string         `db:"location"`
	CompanyID    int64          `db:"company_id"`
	Requirements string         `db:"requirements"`
	IsOpen       bool           `db:"is_open"`
	JobCreatedAt int64          `db:"job_created_at"`
	CompanyName  sql.NullString `db:"company_name"`
	CompanyLogo  sql.NullString `db:"company_logo"`
}

// ListSavedJobs returns the caller's bookmarks with the job embedded.
func (s *Store) ListSavedJobs(ctx context.Context, c domain.Caller) ([]domain.SavedJob, error) {
	var rows []savedRow
	err := s.db.SelectContext(ctx, &rows, `
SELECT s.id, s.user_id, s.job_id, s.created_at,
       j.title, j.recruiter_id, j.description, j.location, j.company_id, j.requirements,
       j.is_open, j.created_at AS job_created_at,
       c.name AS company_name, c.logo_url AS company_logo
FROM saved_jobs s
JOIN jobs j ON j.id = s.job_id
LEFT JOIN companies c ON c.id = j.company_id
WHERE s.user_id = ?
ORDER BY s.created_at DESC, s.id DESC`, c.UserID)
	if err != nil {
		return nil, fmt.Errorf("listing saved jobs: %w", err)
	}

	out := make([]domain.SavedJob, len(rows))
	for i, r := range rows {
		job := jobRow{
			ID:           r.JobID,
			RecruiterID:  r.RecruiterID,
			Title:        r.Title,
			Description:  r.Description,
			Location:     r.Location,
			CompanyID:    r.CompanyID,
			Requirements: r.Requirements,
			IsOpen:       r.IsOpen,
			CreatedAt:    r.JobCreatedAt,
			CompanyName:  r.CompanyName,
			CompanyLogo:  r.CompanyLogo,
			SavedID:      sql.NullInt64{Int64: r.ID, Valid: true},
		}.toDomain()
		out[i] = domain.SavedJob{
			ID:        r.ID,
			UserID:    r.UserID,
			JobID:     r.JobID,
			CreatedAt: fromMillis(r.CreatedAt),
			Job:       &job,
		}
	}
	return out, nil
}
