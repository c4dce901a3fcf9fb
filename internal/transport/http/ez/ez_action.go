package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"qa-assignment-api/internal/domain"
	resp "qa-assignment-api/internal/transport/http/response"
)

// KeySubject is where the auth middleware stores the verified token subject.
const KeySubject = "subject"

// KeyCode holds the envelope code of the response, since the HTTP status is
// always 200.
const KeyCode = "envelope_code"

// Reply writes the envelope and records its code on the context.
func Reply(c *gin.Context, r resp.Resp) {
	c.Set(KeyCode, r.Code)
	c.JSON(http.StatusOK, r)
}

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

type Binder string

const (
	BindJSON  Binder = "json"
	BindQuery Binder = "query"
	BindURI   Binder = "uri"
	BindNone  Binder = "none" // handler reads c.Param / c.Query itself
)

// AErr carries the response code for an action failure.
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// FromDomain maps the domain error taxonomy onto response codes. The message
// is the sentinel's own text so wrapped details (ids, emails) stay in the
// logs only.
func FromDomain(err error) *AErr {
	var ae *AErr
	if errors.As(err, &ae) {
		return ae
	}
	for _, m := range []struct {
		target error
		code   int
	}{
		{domain.ErrInvalidCredentials, resp.CodeUnauthorized},
		{domain.ErrInvalidToken, resp.CodeUnauthorized},
		{domain.ErrNotFound, resp.CodeNotFound},
		{domain.ErrDuplicateEmail, resp.CodeBadRequest},
		{domain.ErrInvalidStatus, resp.CodeBadRequest},
		{domain.ErrInvalidSeverity, resp.CodeBadRequest},
		{domain.ErrValidation, resp.CodeValidation},
	} {
		if errors.Is(err, m.target) {
			return &AErr{Code: m.code, Msg: m.target.Error(), Err: err}
		}
	}
	return &AErr{Code: resp.CodeServerError, Msg: "internal error", Err: err}
}

type Action[I any, O any] struct {
	Method  string // GET | POST | PUT | DELETE
	Path    string // e.g. "/login", "/:id/status"
	Binder  Binder
	Auth    bool // require a verified subject on the context
	Handler func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		if a.Auth && c.GetString(KeySubject) == "" {
			Reply(c, resp.Error(resp.CodeUnauthorized, "unauthorized"))
			return
		}

		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		case BindURI:
			bindErr = c.ShouldBindUri(&in)
		}
		if bindErr != nil {
			_ = c.Error(bindErr).SetType(gin.ErrorTypeBind)
			Reply(c, resp.Error(resp.CodeValidation, bindErr.Error()))
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			ae := FromDomain(err)
			if ae.Code >= resp.CodeServerError {
				_ = c.Error(err)
			}
			Reply(c, resp.Error(ae.Code, ae.Error()))
			return
		}
		Reply(c, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default:
		e.g.POST(a.Path, h)
	}
}
