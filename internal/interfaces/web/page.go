package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"nvcompare/internal/domain/model"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var templateFuncs = template.FuncMap{
	"trillions": func(v float64) string { return fmt.Sprintf("$%.2fT", v) },
	"signed":    func(v float64) string { return fmt.Sprintf("%+.2f", v) },
	"percent":   func(v float64) string { return fmt.Sprintf("%+.2f%%", v) },
	"fixed2":    func(v float64) string { return fmt.Sprintf("%.2f", v) },
}

type pageData struct {
	Site Site
	View model.ViewSnapshot
}

func (s *Server) page(c *gin.Context) {
	s.record(c, model.NewEvent(model.EventPageView, map[string]string{"path": c.Request.URL.Path}))
	c.HTML(http.StatusOK, "index", pageData{Site: s.deps.Site, View: s.deps.View.Snapshot()})
}
