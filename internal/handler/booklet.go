package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"toubkal-lib/internal/catalog"
	"toubkal-lib/internal/i18n"
	"toubkal-lib/internal/middleware"
	"toubkal-lib/internal/util"

	"github.com/gin-gonic/gin"
)

// formValue accepts a JSON string or a bare number, keeping the raw text so
// the catalog validates it the same way either way.
type formValue string

func (v *formValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*v = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = formValue(s)
	default:
		*v = formValue(b)
	}
	return nil
}

type bookletReq struct {
	Title   string    `json:"title"`
	Subject string    `json:"subject"`
	Faculty string    `json:"faculty"`
	Year    string    `json:"year"`
	Pages   formValue `json:"pages"`
}

func (r bookletReq) form(id string) catalog.BookletForm {
	return catalog.BookletForm{
		ID:      id,
		Title:   r.Title,
		Subject: r.Subject,
		Faculty: r.Faculty,
		Year:    r.Year,
		Pages:   string(r.Pages),
	}
}

func (h *CatalogHandler) CreateBooklet(c *gin.Context) {
	h.upsert(c, "")
}

// UpdateBooklet replaces the booklet named in the path. An id that matches
// nothing is stored as a new booklet with a fresh id.
func (h *CatalogHandler) UpdateBooklet(c *gin.Context) {
	id := c.Param("id")
	if err := util.ValidateBookletID(id); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, middleware.Lang(c).T(i18n.BadRequest))
		return
	}
	h.upsert(c, id)
}

func (h *CatalogHandler) upsert(c *gin.Context, id string) {
	lang := middleware.Lang(c)

	var req bookletReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, lang.T(i18n.BadRequest))
		return
	}

	doc, b, err := h.Store.UpsertBooklet(c.Request.Context(), req.form(id))
	var verr *catalog.ValidationError
	switch {
	case errors.As(err, &verr):
		util.ErrorWith(c, http.StatusBadRequest, util.CodeInvalidParam, lang.T(i18n.InvalidBooklet), util.Response{
			"fields": verr.Fields,
		})
		return
	case err != nil:
		h.serverError(c, err, "upsert booklet")
		return
	}

	h.Log.WithField("booklet", b.ID).Info("booklet saved")
	util.Success(c, util.Response{
		"booklet": b,
		"catalog": doc,
	})
}

func (h *CatalogHandler) DeleteBooklet(c *gin.Context) {
	lang := middleware.Lang(c)
	id := c.Param("id")
	if err := util.ValidateBookletID(id); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, lang.T(i18n.BadRequest))
		return
	}

	doc, err := h.Store.DeleteBooklet(c.Request.Context(), id)
	if err != nil {
		h.serverError(c, err, "delete booklet")
		return
	}
	util.Success(c, util.Response{
		"message": lang.T(i18n.Deleted),
		"catalog": doc,
	})
}
