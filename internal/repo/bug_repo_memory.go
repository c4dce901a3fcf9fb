package repo

import (
	"fmt"
	"time"

	"qa-assignment-api/internal/domain"
	"qa-assignment-api/pkg/utils"
)

type BugRepo struct {
	c *Collection[domain.BugReport]
}

func NewBugRepo(now func() time.Time) *BugRepo {
	return &BugRepo{
		c: NewCollection(
			func(b domain.BugReport) int { return b.ID },
			domain.BugReport.Clone,
			now,
		),
	}
}

var _ domain.BugRepository = (*BugRepo)(nil)

func (r *BugRepo) List(f domain.BugFilter, skip, limit int) []domain.BugReport {
	var ps []func(domain.BugReport) bool
	if f.Status != "" {
		ps = append(ps, func(b domain.BugReport) bool { return utils.EqualFold(string(b.Status), f.Status) })
	}
	if f.Severity != "" {
		ps = append(ps, func(b domain.BugReport) bool { return utils.EqualFold(string(b.Severity), f.Severity) })
	}
	return r.c.Find(skip, limit, ps...)
}

func (r *BugRepo) Get(id int) (domain.BugReport, error) {
	b, err := r.c.Get(id)
	if err != nil {
		return b, fmt.Errorf("bug %d: %w", id, err)
	}
	return b, nil
}

// Create files a new report in status Open.
func (r *BugRepo) Create(in domain.BugInput, createdBy string) domain.BugReport {
	return r.c.Create(func(id int, now time.Time) domain.BugReport {
		return domain.BugReport{
			ID:                id,
			Title:             in.Title,
			Description:       in.Description,
			Severity:          in.Severity,
			BugType:           in.BugType,
			ReproductionSteps: in.ReproductionSteps,
			ExpectedBehavior:  in.ExpectedBehavior,
			ActualBehavior:    in.ActualBehavior,
			Environment:       in.Environment,
			Status:            domain.StatusOpen,
			CreatedAt:         now,
			CreatedBy:         createdBy,
		}
	})
}

// UpdateStatus reports ErrNotFound before ErrInvalidStatus. On either error
// the stored report is left untouched.
func (r *BugRepo) UpdateStatus(id int, status domain.BugStatus) (domain.BugReport, error) {
	b, err := r.c.Update(id, func(b *domain.BugReport) error {
		if !status.Valid() {
			return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
		}
		b.Status = status
		return nil
	})
	if err != nil {
		return b, fmt.Errorf("update bug %d status: %w", id, err)
	}
	return b, nil
}

func (r *BugRepo) Delete(id int) error {
	if err := r.c.Delete(id); err != nil {
		return fmt.Errorf("delete bug %d: %w", id, err)
	}
	return nil
}

// BySeverity matches the enum value exactly.
func (r *BugRepo) BySeverity(s domain.Severity) ([]domain.BugReport, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSeverity, s)
	}
	return r.c.Find(0, -1, func(b domain.BugReport) bool { return b.Severity == s }), nil
}

func (r *BugRepo) Statistics() domain.BugStats {
	st := domain.BugStats{
		BySeverity: make(map[domain.Severity]int, len(domain.Severities())),
		ByStatus:   make(map[domain.BugStatus]int, len(domain.Statuses())),
	}
	for _, s := range domain.Severities() {
		st.BySeverity[s] = 0
	}
	for _, s := range domain.Statuses() {
		st.ByStatus[s] = 0
	}
	r.c.Each(func(b domain.BugReport) {
		st.Total++
		if _, ok := st.BySeverity[b.Severity]; ok {
			st.BySeverity[b.Severity]++
		}
		if _, ok := st.ByStatus[b.Status]; ok {
			st.ByStatus[b.Status]++
		}
	})
	return st
}

func (r *BugRepo) Len() int { return r.c.Len() }
