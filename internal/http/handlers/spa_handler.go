package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/housing-backend/internal/http/handlers/common"
	"github.com/ignatzorin/housing-backend/internal/pkg/apperror"
)

// WebRoutes страницы фронтенда. Сегмент с ":" совпадает с любым значением.
var WebRoutes = []string{
	"/",
	"/listing/:id",
	"/add",
	"/my",
	"/my/edit/:id",
	"/login",
	"/signup",
	"/auth/callback",
	"/safety",
	"/privacy",
	"/admin/pending",
	"/admin/reports",
}

// SPAHandler раздаёт собранный фронтенд. Известные страницы получают index.html со статусом 200,
// остальные пути тот же index.html со статусом 404, клиент покажет страницу "не найдено".
type SPAHandler struct {
	root   string
	files  http.FileSystem
	routes [][]string
}

// NewSPAHandler создаёт хэндлер для каталога сборки фронтенда.
func NewSPAHandler(root string) *SPAHandler {
	routes := make([][]string, 0, len(WebRoutes))
	for _, r := range WebRoutes {
		routes = append(routes, splitPath(r))
	}
	return &SPAHandler{root: root, files: http.Dir(root), routes: routes}
}

// Available сообщает, есть ли в каталоге index.html.
func (h *SPAHandler) Available() bool {
	info, err := os.Stat(filepath.Join(h.root, "index.html"))
	return err == nil && !info.IsDir()
}

// NoRoute обрабатывает все пути без маршрута. Для /api отвечает JSON ошибкой.
func (h *SPAHandler) NoRoute(c *gin.Context) {
	p := path.Clean("/" + c.Request.URL.Path)
	isRead := c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead
	if p == "/api" || strings.HasPrefix(p, "/api/") || !isRead || !h.Available() {
		common.RespondError(c, apperror.ErrNotFound)
		return
	}

	if p != "/" && h.isFile(p) {
		c.FileFromFS(p, h.files)
		return
	}

	index, err := os.ReadFile(filepath.Join(h.root, "index.html"))
	if err != nil {
		common.RespondError(c, apperror.ErrInternal.WithCause(err))
		return
	}

	status := http.StatusOK
	if !h.isWebRoute(p) {
		status = http.StatusNotFound
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(status, "text/html; charset=utf-8", index)
}

func (h *SPAHandler) isWebRoute(p string) bool {
	segments := splitPath(p)
	for _, route := range h.routes {
		if matchSegments(route, segments) {
			return true
		}
	}
	return false
}

func (h *SPAHandler) isFile(p string) bool {
	f, err := h.files.Open(p)
	if err != nil {
		return false
	}
	defer f.Close()
	info, err := f.Stat()
	return err == nil && !info.IsDir()
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func matchSegments(route, segments []string) bool {
	if len(route) != len(segments) {
		return false
	}
	for i, part := range route {
		if strings.HasPrefix(part, ":") {
			continue
		}
		if part != segments[i] {
			return false
		}
	}
	return true
}
