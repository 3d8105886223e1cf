package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ManuGH/jobjump/internal/domain"
)

type applicationRow struct {
	ID          int64  `db:"id"`
	JobID       int64  `db:"job_id"`
	CandidateID string `db:"candidate_id"`
	Name        string `db:"name"`
	Status      string `db:"status"`
	Resume      string `db:"resume"`
	Skills      string `db:"skills"`
	Experience  int    `db:"experience"`
	Education   string `db:"education"`
	CreatedAt   int64  `db:"created_at"`
}

func (r applicationRow) toDomain() domain.Application {
	return domain.Application{
		ID:          r.ID,
		JobID:       r.JobID,
		CandidateID: r.CandidateID,
		Name:        r.Name,
		Status:      domain.ApplicationStatus(r.Status),
		Resume:      r.Resume,
		Skills:      r.Skills,
		Experience:  r.Experience,
		Education:   r.Education,
		CreatedAt:   fromMillis(r.CreatedAt),
	}
}

const applicationColumns = `a.id, a.job_id, a.candidate_id, a.name, a.status, a.resume, a.skills, a.experience, a.education, a.created_at`

// ApplyToJob records the caller's application to an open job.
func (s *Store) ApplyToJob(ctx context.Context, c domain.Caller, in domain.NewApplication) (domain.Application, error) {
	if err := requireUser(c); err != nil {
		return domain.Application{}, err
	}
	if in.CandidateID == "" {
		in.CandidateID = c.UserID
	}
	if in.CandidateID != c.UserID {
		return domain.Application{}, fmt.Errorf("applying as %s: %w", in.CandidateID, domain.ErrForbidden)
	}
	if in.Status == "" {
		in.Status = domain.StatusApplied
	}

	var open bool
	err := s.db.GetContext(ctx, &open, `SELECT is_open FROM jobs WHERE id = ?`, in.JobID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Application{}, notFound("job", in.JobID)
	}
	if err != nil {
		return domain.Application{}, fmt.Errorf("fetching job %d: %w", in.JobID, err)
	}
	if !open {
		return domain.Application{}, fmt.Errorf("job %d is not hiring: %w", in.JobID, domain.ErrInvalid)
	}

	row := applicationRow{
		JobID:       in.JobID,
		CandidateID: in.CandidateID,
		Name:        in.Name,
		Status:      string(in.Status),
		Resume:      in.Resume,
		Skills:      in.Skills,
		Experience:  in.Experience,
		Education:   in.Education,
		CreatedAt:   s.stamp(),
	}
	res, err := s.db.NamedExecContext(ctx, `
INSERT INTO applications (job_id, candidate_id, name, status, resume, skills, experience, education, created_at)
VALUES (:job_id, :candidate_id, :name, :status, :resume, :skills, :experience, :education, :created_at)`, row)
	if isConstraint(err) {
		return domain.Application{}, fmt.Errorf("applying to job %d: %v: %w", in.JobID, err, domain.ErrInvalid)
	}
	if err != nil {
		return domain.Application{}, fmt.Errorf("applying to job %d: %w", in.JobID, err)
	}
	if row.ID, err = res.LastInsertId(); err != nil {
		return domain.Application{}, fmt.Errorf("applying to job %d: %w", in.JobID, err)
	}
	return row.toDomain(), nil
}

type applicationWithJobRow struct {
	applicationRow
	JobTitle    sql.NullString `db:"job_title"`
	CompanyName sql.NullString `db:"company_name"`
}

// ListApplications returns a candidate's applications with job title and company name.
func (s *Store) ListApplications(ctx context.Context, _ domain.Caller, candidateID string) ([]domain.Application, error) {
	var rows []applicationWithJobRow
	err := s.db.SelectContext(ctx, &rows, `
SELECT `+applicationColumns+`, j.title AS job_title, c.name AS company_name
FROM applications a
LEFT JOIN jobs j ON j.id = a.job_id
LEFT JOIN companies c ON c.id = j.company_id
WHERE a.candidate_id = ?
ORDER BY a.created_at DESC, a.id DESC`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("listing applications of %s: %w", candidateID, err)
	}

	out := make([]domain.Application, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
		if r.JobTitle.Valid {
			job := &domain.Job{ID: r.JobID, Title: r.JobTitle.String}
			if r.CompanyName.Valid {
				job.Company = &domain.Company{Name: r.CompanyName.String}
			}
			out[i].Job = job
		}
	}
	return out, nil
}

// UpdateApplicationStatus changes the status of one application. Only the
// recruiter who owns the job may do this.
func (s *Store) UpdateApplicationStatus(ctx context.Context, c domain.Caller, id int64, status domain.ApplicationStatus) (domain.Application, error) {
	if _, ok := domain.ParseApplicationStatus(string(status)); !ok {
		return domain.Application{}, fmt.Errorf("status %q: %w", status, domain.ErrInvalid)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Application{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var row applicationRow
	err = tx.GetContext(ctx, &row, `SELECT `+applicationColumns+` FROM applications a WHERE a.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Application{}, notFound("application", id)
	}
	if err != nil {
		return domain.Application{}, fmt.Errorf("fetching application %d: %w", id, err)
	}
	if err := s.checkOwner(ctx, tx, c, row.JobID); err != nil {
		return domain.Application{}, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE applications SET status = ? WHERE id = ?`, string(status), id); err != nil {
		return domain.Application{}, fmt.Errorf("updating application %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Application{}, fmt.Errorf("commit: %w", err)
	}
	row.Status = string(status)
	return row.toDomain(), nil
}

// applicationsFor loads applications grouped by job id.
func (s *Store) applicationsFor(ctx context.Context, jobIDs []int64) (map[int64][]domain.Application, error) {
	query, args, err := sqlx.In(`SELECT `+applicationColumns+` FROM applications a WHERE a.job_id IN (?) ORDER BY a.created_at, a.id`, jobIDs)
	if err != nil {
		return nil, fmt.Errorf("building application query: %w", err)
	}
	var rows []applicationRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("listing applications: %w", err)
	}
	out := make(map[int64][]domain.Application, len(jobIDs))
	for _, r := range rows {
		out[r.JobID] = append(out[r.JobID], r.toDomain())
	}
	return out, nil
}
