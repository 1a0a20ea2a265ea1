package handler

import (
	"net/http"

	"toubkal-lib/internal/middleware"

	"github.com/gin-gonic/gin"
)

func pageData(c *gin.Context, title string) gin.H {
	lang := middleware.Lang(c)
	return gin.H{
		"title": title,
		"lang":  string(lang),
		"dir":   lang.Dir(),
	}
}

// IndexPage renders the public catalog shell; data comes from /api/catalog.
func IndexPage(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", pageData(c, "TOUBKAL LIB"))
}

// AdminPage renders the admin shell. Which view it shows is decided client
// side from /api/admin/status.
func AdminPage(c *gin.Context) {
	c.HTML(http.StatusOK, "admin.html", pageData(c, "TOUBKAL LIB - Admin"))
}
