package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"qa-assignment-api/internal/core/cache"
	"qa-assignment-api/internal/domain"
	"qa-assignment-api/internal/transport/http/ez"
)

type BugHandler struct {
	Bugs domain.BugRepository
	// DefaultReporter is recorded as created_by when the caller is anonymous.
	DefaultReporter string
	ProtectWrites   bool

	stats cache.Flight[domain.BugStats]
}

type bugListQuery struct {
	Status   string `form:"status"`
	Severity string `form:"severity"`
	Skip     int    `form:"skip,default=0"  binding:"min=0"`
	Limit    int    `form:"limit,default=20" binding:"min=0"`
}

type severityURI struct {
	Severity string `uri:"severity" binding:"required"`
}

type bugIn struct {
	Title             string   `json:"title"              binding:"required,min=5"`
	Description       string   `json:"description"        binding:"required,min=20"`
	Severity          string   `json:"severity"           binding:"required,oneof=Critical High Medium Low"`
	BugType           string   `json:"bug_type"           binding:"required,oneof=Functional Security Performance Validation UI/UX"`
	ReproductionSteps []string `json:"reproduction_steps" binding:"required"`
	ExpectedBehavior  string   `json:"expected_behavior"  binding:"required"`
	ActualBehavior    string   `json:"actual_behavior"    binding:"required"`
	Environment       *string  `json:"environment"`
}

// statusIn accepts ?status= or a JSON body {"status": "..."}.
type statusIn struct {
	Status string `form:"status" json:"status"`
}

func (h *BugHandler) Priority() int { return 30 }

func (h *BugHandler) MountAPI(api *gin.RouterGroup) {
	r := ez.New(api.Group("/bugs"))

	ez.RegisterAction(r, ez.Action[bugListQuery, []domain.BugReport]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindQuery,
		Handler: func(_ *gin.Context, in *bugListQuery) ([]domain.BugReport, error) {
			return h.Bugs.List(domain.BugFilter{Status: in.Status, Severity: in.Severity}, in.Skip, in.Limit), nil
		},
	})

	ez.RegisterAction(r, ez.Action[struct{}, domain.BugStats]{
		Method: http.MethodGet,
		Path:   "/stats/summary",
		Binder: ez.BindNone,
		Handler: func(_ *gin.Context, _ *struct{}) (domain.BugStats, error) {
			return h.stats.Do("summary", func() (domain.BugStats, error) {
				return h.Bugs.Statistics(), nil
			})
		},
	})

	ez.RegisterAction(r, ez.Action[severityURI, []domain.BugReport]{
		Method: http.MethodGet,
		Path:   "/severity/:severity",
		Binder: ez.BindURI,
		Handler: func(_ *gin.Context, in *severityURI) ([]domain.BugReport, error) {
			return h.Bugs.BySeverity(domain.Severity(in.Severity))
		},
	})

	ez.RegisterAction(r, ez.Action[idURI, domain.BugReport]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: ez.BindURI,
		Handler: func(_ *gin.Context, in *idURI) (domain.BugReport, error) {
			return h.Bugs.Get(in.ID)
		},
	})

	ez.RegisterAction(r, ez.Action[bugIn, domain.BugReport]{
		Method: http.MethodPost,
		Path:   "",
		Binder: ez.BindJSON,
		Auth:   h.ProtectWrites,
		Handler: func(c *gin.Context, in *bugIn) (domain.BugReport, error) {
			reporter := c.GetString(ez.KeySubject)
			if reporter == "" {
				reporter = h.DefaultReporter
			}
			return h.Bugs.Create(domain.BugInput{
				Title:             in.Title,
				Description:       in.Description,
				Severity:          domain.Severity(in.Severity),
				BugType:           domain.BugType(in.BugType),
				ReproductionSteps: in.ReproductionSteps,
				ExpectedBehavior:  in.ExpectedBehavior,
				ActualBehavior:    in.ActualBehavior,
				Environment:       in.Environment,
			}, reporter), nil
		},
	})

	ez.RegisterAction(r, ez.Action[statusIn, domain.BugReport]{
		Method: http.MethodPut,
		Path:   "/:id/status",
		Binder: ez.BindNone,
		Auth:   h.ProtectWrites,
		Handler: func(c *gin.Context, in *statusIn) (domain.BugReport, error) {
			id, err := paramID(c)
			if err != nil {
				return domain.BugReport{}, err
			}
			in.Status = c.Query("status")
			if in.Status == "" && c.Request.ContentLength != 0 {
				if err := c.ShouldBindJSON(in); err != nil {
					return domain.BugReport{}, ez.BadRequest(err.Error())
				}
			}
			return h.Bugs.UpdateStatus(id, domain.BugStatus(in.Status))
		},
	})

	ez.RegisterAction(r, ez.Action[idURI, message]{
		Method: http.MethodDelete,
		Path:   "/:id",
		Binder: ez.BindURI,
		Auth:   h.ProtectWrites,
		Handler: func(_ *gin.Context, in *idURI) (message, error) {
			if err := h.Bugs.Delete(in.ID); err != nil {
				return message{}, err
			}
			return message{Message: "Bug deleted"}, nil
		},
	})
}
