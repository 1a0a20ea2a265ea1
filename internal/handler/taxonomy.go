package handler

import (
	"net/http"

	"toubkal-lib/internal/catalog"
	"toubkal-lib/internal/i18n"
	"toubkal-lib/internal/middleware"
	"toubkal-lib/internal/util"

	"github.com/gin-gonic/gin"
)

type taxonomyReq struct {
	Name string `json:"name"`
}

// AddTaxonomy appends a faculty or year. Blank and duplicate names leave the
// list unchanged and still answer 200 with the current document.
func (h *CatalogHandler) AddTaxonomy(kind catalog.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := middleware.Lang(c)

		var req taxonomyReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, lang.T(i18n.BadRequest))
			return
		}
		if err := util.ValidateLabel(req.Name); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}

		doc, err := h.Store.AddTaxonomyEntry(c.Request.Context(), kind, req.Name)
		if err != nil {
			h.serverError(c, err, "add "+string(kind))
			return
		}
		util.Success(c, util.Response{
			"entries": doc.Entries(kind),
			"catalog": doc,
		})
	}
}

// RemoveTaxonomy drops a faculty or year. Booklets naming it are untouched.
func (h *CatalogHandler) RemoveTaxonomy(kind catalog.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := h.Store.RemoveTaxonomyEntry(c.Request.Context(), kind, c.Param("name"))
		if err != nil {
			h.serverError(c, err, "remove "+string(kind))
			return
		}
		util.Success(c, util.Response{
			"entries": doc.Entries(kind),
			"catalog": doc,
		})
	}
}
