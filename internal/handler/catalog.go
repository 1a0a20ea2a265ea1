package handler

import (
	"net/http"
	"slices"

	"toubkal-lib/internal/catalog"
	"toubkal-lib/internal/config"
	"toubkal-lib/internal/deeplink"
	"toubkal-lib/internal/i18n"
	"toubkal-lib/internal/middleware"
	"toubkal-lib/internal/util"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// CatalogHandler serves the public catalog and the admin catalog editor.
type CatalogHandler struct {
	Store   *catalog.Store
	Contact config.ContactConfig
	Log     log.FieldLogger
}

func NewCatalogHandler(store *catalog.Store, contact config.ContactConfig, logger log.FieldLogger) *CatalogHandler {
	return &CatalogHandler{
		Store:   store,
		Contact: contact,
		Log:     logger,
	}
}

func (h *CatalogHandler) serverError(c *gin.Context, err error, msg string) {
	h.Log.WithError(err).Error(msg)
	util.Error(c, http.StatusInternalServerError, util.CodeServerErr, middleware.Lang(c).T(i18n.ServerError))
}

// Catalog lists the booklets matching ?faculty=&year=&q= together with the
// filter vocabularies.
func (h *CatalogHandler) Catalog(c *gin.Context) {
	doc, err := h.Store.Load(c.Request.Context())
	if err != nil {
		h.serverError(c, err, "load catalog")
		return
	}

	p := catalog.Predicate{
		Faculty: c.DefaultQuery("faculty", catalog.All),
		Year:    c.DefaultQuery("year", catalog.All),
		Search:  c.Query("q"),
	}
	booklets := slices.Collect(doc.Filter(p))
	if booklets == nil {
		booklets = []catalog.Booklet{}
	}

	util.Success(c, util.Response{
		"faculties": doc.Faculties,
		"years":     doc.Years,
		"booklets":  booklets,
		"total":     len(doc.Booklets),
	})
}

// OrderLink returns the WhatsApp link that orders one booklet.
func (h *CatalogHandler) OrderLink(c *gin.Context) {
	lang := middleware.Lang(c)
	id := c.Param("id")
	if err := util.ValidateBookletID(id); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, lang.T(i18n.BadRequest))
		return
	}

	b, ok, err := h.Store.Booklet(c.Request.Context(), id)
	if err != nil {
		h.serverError(c, err, "load booklet")
		return
	}
	if !ok {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, lang.T(i18n.BookletNotFound))
		return
	}

	msg := lang.OrderMessage(i18n.BookletOrder{
		Title:   b.Title,
		Subject: b.Subject,
		Faculty: b.Faculty,
		Year:    b.Year,
		Pages:   b.Pages,
	})
	util.Success(c, util.Response{
		"url": deeplink.WhatsApp(h.Contact.Phone, msg),
	})
}

// ContactLinks returns the outbound links shown in the footer and printing section.
func (h *CatalogHandler) ContactLinks(c *gin.Context) {
	lang := middleware.Lang(c)
	util.Success(c, util.Response{
		"whatsapp": deeplink.WhatsApp(h.Contact.Phone, lang.InquiryMessage()),
		"printing": deeplink.WhatsApp(h.Contact.Phone, lang.PrintingMessage()),
		"maps":     deeplink.Maps(h.Contact.Address),
		"phone":    deeplink.Tel(h.Contact.Phone),
		"address":  h.Contact.Address,
	})
}

// AdminCatalog returns the whole unfiltered document.
func (h *CatalogHandler) AdminCatalog(c *gin.Context) {
	doc, err := h.Store.Load(c.Request.Context())
	if err != nil {
		h.serverError(c, err, "load catalog")
		return
	}
	util.Success(c, util.Response{"catalog": doc})
}
