package middleware

import (
	"net/http"

	"toubkal-lib/internal/guard"
	"toubkal-lib/internal/i18n"
	"toubkal-lib/internal/storage"
	"toubkal-lib/internal/util"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// GuardFactory builds the admin guard for one browser scope.
type GuardFactory func(kv storage.KV) *guard.Guard

// RequireAdmin lets the request through only while the browser's admin
// session is live. Expiry is evaluated here, on every guarded request.
func RequireAdmin(kv storage.KV, newGuard GuardFactory, logger log.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := Lang(c)
		st, err := newGuard(ClientKV(c, kv)).Status(c.Request.Context())
		if err != nil {
			logger.WithError(err).Error("evaluate admin guard")
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, lang.T(i18n.ServerError))
			c.Abort()
			return
		}

		switch st.Phase {
		case guard.LoggedIn:
			c.Next()
		case guard.Locked:
			util.ErrorWith(c, http.StatusLocked, util.CodeLocked, lang.T(i18n.LockedMessage), util.Response{
				"locked_until": st.LockedUntil,
			})
			c.Abort()
		default:
			msg := lang.T(i18n.NotAuthenticated)
			if st.Notice == guard.NoticeSessionExpired {
				msg = lang.T(i18n.SessionExpired)
			}
			util.ErrorWith(c, http.StatusUnauthorized, util.CodeAuth, msg, util.Response{
				"notice": string(st.Notice),
			})
			c.Abort()
		}
	}
}
