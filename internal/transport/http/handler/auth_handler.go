package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"qa-assignment-api/internal/domain"
	"qa-assignment-api/internal/service"
	"qa-assignment-api/internal/transport/http/ez"
	mdw "qa-assignment-api/internal/transport/http/middleware"
)

type AuthHandler struct {
	Auth *service.AuthService
}

type registerIn struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"     binding:"required,min=2"`
}

type loginIn struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Priority() int { return 10 }

func (h *AuthHandler) MountAPI(api *gin.RouterGroup) {
	g := ez.New(api.Group("/auth"))

	ez.RegisterAction(g, ez.Action[registerIn, domain.User]{
		Method: http.MethodPost,
		Path:   "/register",
		Binder: ez.BindJSON,
		Handler: func(_ *gin.Context, in *registerIn) (domain.User, error) {
			return h.Auth.Register(strings.TrimSpace(in.Email), in.Password, strings.TrimSpace(in.Name))
		},
	})

	ez.RegisterAction(g, ez.Action[loginIn, service.LoginResult]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: ez.BindJSON,
		Handler: func(_ *gin.Context, in *loginIn) (service.LoginResult, error) {
			return h.Auth.Login(strings.TrimSpace(in.Email), in.Password)
		},
	})

	ez.RegisterAction(g, ez.Action[struct{}, service.TokenPair]{
		Method: http.MethodPost,
		Path:   "/refresh-token",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (service.TokenPair, error) {
			tok := mdw.BearerToken(c)
			if tok == "" {
				return service.TokenPair{}, ez.Unauthorized("missing token")
			}
			return h.Auth.Refresh(tok)
		},
	})

	ez.RegisterAction(g, ez.Action[struct{}, domain.User]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (domain.User, error) {
			tok := mdw.BearerToken(c)
			if tok == "" {
				return domain.User{}, ez.Unauthorized("missing token")
			}
			return h.Auth.WhoAmI(tok)
		},
	})
}
