package handler

import (
	"errors"
	"net/http"
	"time"

	"toubkal-lib/internal/guard"
	"toubkal-lib/internal/i18n"
	"toubkal-lib/internal/middleware"
	"toubkal-lib/internal/storage"
	"toubkal-lib/internal/util"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// AuthHandler serves the admin guard: status, login and logout.
type AuthHandler struct {
	KV       storage.KV
	NewGuard middleware.GuardFactory
	Log      log.FieldLogger
}

func NewAuthHandler(kv storage.KV, newGuard middleware.GuardFactory, logger log.FieldLogger) *AuthHandler {
	return &AuthHandler{
		KV:       kv,
		NewGuard: newGuard,
		Log:      logger,
	}
}

func (h *AuthHandler) guardFor(c *gin.Context) *guard.Guard {
	return h.NewGuard(middleware.ClientKV(c, h.KV))
}

func statusPayload(lang i18n.Lang, st guard.Status) util.Response {
	out := util.Response{
		"phase":              st.Phase.String(),
		"notice":             string(st.Notice),
		"failed_attempts":    st.FailedAttempts,
		"remaining_attempts": st.RemainingAttempts,
		"locked_until":       optionalTime(st.LockedUntil),
		"session_expires_at": optionalTime(st.SessionExpiresAt),
	}
	if st.Notice == guard.NoticeSessionExpired {
		out["notice_message"] = lang.T(i18n.SessionExpired)
	}
	if st.Phase == guard.Locked {
		out["title"] = lang.T(i18n.LockedTitle)
		out["message"] = lang.T(i18n.LockedMessage)
	}
	return out
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// Status evaluates the guard for the requesting browser. It always answers;
// the admin page uses it on load to pick between login form and dashboard.
func (h *AuthHandler) Status(c *gin.Context) {
	lang := middleware.Lang(c)
	st, err := h.guardFor(c).Status(c.Request.Context())
	if err != nil {
		h.Log.WithError(err).Error("guard status")
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, lang.T(i18n.ServerError))
		return
	}
	util.Success(c, statusPayload(lang, st))
}

type loginReq struct {
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	lang := middleware.Lang(c)

	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, lang.T(i18n.BadRequest))
		return
	}
	password := []byte(req.Password)
	req.Password = ""

	st, err := h.guardFor(c).AttemptLogin(c.Request.Context(), password)

	var authErr *guard.AuthError
	switch {
	case err == nil:
		util.Success(c, statusPayload(lang, st))
	case errors.Is(err, guard.ErrAlreadyAuthenticated):
		util.ErrorWith(c, http.StatusConflict, util.CodeConflict, err.Error(), statusPayload(lang, st))
	case errors.As(err, &authErr) && errors.Is(err, guard.ErrLockedOut):
		msg := lang.T(i18n.LockedMessage)
		if authErr.JustLocked {
			msg = lang.T(i18n.ErrorLocked)
		}
		util.ErrorWith(c, http.StatusLocked, util.CodeLocked, msg, statusPayload(lang, st))
	case errors.As(err, &authErr):
		util.ErrorWith(c, http.StatusUnauthorized, util.CodeAuth, lang.IncorrectPassword(authErr.Remaining), statusPayload(lang, st))
	default:
		h.Log.WithError(err).Error("admin login")
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, lang.T(i18n.ServerError))
	}
}

func (h *AuthHandler) Logout(c *gin.Context) {
	lang := middleware.Lang(c)
	if err := h.guardFor(c).Logout(c.Request.Context()); err != nil {
		h.Log.WithError(err).Error("admin logout")
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, lang.T(i18n.ServerError))
		return
	}
	util.Success(c, util.Response{"phase": guard.LoggedOut.String()})
}
