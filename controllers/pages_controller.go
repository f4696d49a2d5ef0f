package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PagesController serves the static pages and error handlers.
type PagesController struct{}

// NewPagesController creates a PagesController.
func NewPagesController() *PagesController {
	return &PagesController{}
}

// About renders the project description page.
func (p *PagesController) About(ctx *gin.Context) {
	render(ctx, http.StatusOK, "about.html", gin.H{"Title": "About"})
}

// Rules renders the community rules page.
func (p *PagesController) Rules(ctx *gin.Context) {
	render(ctx, http.StatusOK, "rules.html", gin.H{"Title": "Rules"})
}

// NotFound is the NoRoute handler rendering the dedicated 404 page.
func (p *PagesController) NotFound(ctx *gin.Context) {
	renderNotFound(ctx)
}
