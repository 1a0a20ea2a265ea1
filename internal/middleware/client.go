package middleware

import (
	"net/http"
	"time"

	"toubkal-lib/internal/i18n"
	"toubkal-lib/internal/storage"
	"toubkal-lib/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	// ClientCookie carries the signed storage scope of a browser.
	ClientCookie = "tl_client"
	// LangCookie remembers the language toggle.
	LangCookie = "lang"

	ctxClientID = "clientID"
	ctxLang     = "lang"
)

// ClientOptions configures ClientScope.
type ClientOptions struct {
	Secret string
	Issuer string
	TTL    time.Duration
	Secure bool
}

// ClientScope resolves the browser's storage scope from its client cookie,
// minting a fresh scope when the cookie is missing or fails verification.
func ClientScope(opts ClientOptions, logger log.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var clientID string
		if tok, err := c.Cookie(ClientCookie); err == nil && tok != "" {
			if claims, err := util.ParseClientToken(opts.Secret, opts.Issuer, tok); err == nil {
				clientID = claims.ClientID
			} else {
				logger.WithError(err).Debug("client cookie rejected")
			}
		}

		if clientID == "" {
			clientID = uuid.NewString()
			tok, err := util.GenerateClientToken(opts.Secret, opts.Issuer, clientID, opts.TTL)
			if err != nil {
				logger.WithError(err).Error("sign client cookie")
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, i18n.EN.T(i18n.ServerError))
				c.Abort()
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(ClientCookie, tok, int(opts.TTL.Seconds()), "/", "", opts.Secure, true)
		}

		c.Set(ctxClientID, clientID)
		c.Next()
	}
}

// ClientID returns the scope id set by ClientScope.
func ClientID(c *gin.Context) string {
	return c.GetString(ctxClientID)
}

// ClientKV narrows kv to the requesting browser's scope.
func ClientKV(c *gin.Context, kv storage.KV) storage.KV {
	return storage.Prefixed(kv, "client:"+ClientID(c)+":")
}

// Language negotiates the response language from ?lang=, the lang cookie and
// Accept-Language. An explicit ?lang= is remembered in the cookie.
func Language(fallback i18n.Lang) gin.HandlerFunc {
	return func(c *gin.Context) {
		explicit := c.Query("lang")
		if l, ok := i18n.Parse(explicit); ok {
			c.SetCookie(LangCookie, string(l), 365*24*3600, "/", "", false, false)
		} else if v, err := c.Cookie(LangCookie); err == nil {
			explicit = v
		}
		c.Set(ctxLang, i18n.Negotiate(explicit, c.GetHeader("Accept-Language"), fallback))
		c.Next()
	}
}

// Lang returns the language chosen by Language, English when unset.
func Lang(c *gin.Context) i18n.Lang {
	if v, ok := c.Get(ctxLang); ok {
		if l, ok := v.(i18n.Lang); ok {
			return l
		}
	}
	return i18n.EN
}
