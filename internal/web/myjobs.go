package web

import (
	"context"
	"net/http"

	"github.com/ManuGH/jobjump/internal/domain"
	"github.com/ManuGH/jobjump/internal/metrics"
)

type myJobsView struct {
	Candidate    bool
	Applications []domain.Application
	Jobs         []domain.Job
	UserID       string
	Error        string
}

// myJobsPage shows a candidate's applications or the jobs a recruiter posted.
func (h *Handler) myJobsPage(w http.ResponseWriter, r *http.Request) {
	user := principal(r).User
	v := myJobsView{Candidate: user.Role() == domain.RoleCandidate, UserID: user.ID}

	if v.Candidate {
		apps := newLoader("applications.mine", user.ID, func(ctx context.Context, c domain.Caller, candidateID string, _ none) ([]domain.Application, error) {
			return h.backend.ListApplications(ctx, c, candidateID)
		})
		list, err := apps.Do(r.Context(), none{})
		v.Applications = list
		if err != nil {
			v.Error = apps.Err().Message
		}
		h.render(w, r, http.StatusOK, "my_jobs", "My Applications", v)
		return
	}

	jobs := newLoader("jobs.mine", user.ID, func(ctx context.Context, c domain.Caller, recruiterID string, _ none) ([]domain.Job, error) {
		return h.backend.ListMyJobs(ctx, c, recruiterID)
	})
	list, err := jobs.Do(r.Context(), none{})
	v.Jobs = list
	if err != nil {
		v.Error = jobs.Err().Message
	}
	h.render(w, r, http.StatusOK, "my_jobs", "My Jobs", v)
}

func (h *Handler) deleteJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.renderError(w, r, http.StatusNotFound, "This job does not exist.")
		return
	}
	del := newLoader("jobs.delete", none{}, func(ctx context.Context, c domain.Caller, _ none, id int64) (none, error) {
		return none{}, h.backend.DeleteJob(ctx, c, id)
	})
	if _, err := del.Do(r.Context(), id); err != nil {
		h.fail(w, r, "jobs.delete_failed", err)
		return
	}
	metrics.RecordJobDeleted()
	seeOther(w, r, "/my-jobs")
}
