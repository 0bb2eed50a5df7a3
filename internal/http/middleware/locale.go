package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/housing-backend/internal/catalog"
)

// Context ключи локализации.
const (
	ContextLangKey    = "lang"
	ContextCatalogKey = "catalog"
)

// Locale выбирает язык ответа: параметр ?lang= важнее заголовка Accept-Language.
func Locale(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		source := c.GetHeader("Accept-Language")
		if q := c.Query("lang"); q != "" {
			source = q
		}
		lang := cat.Match(source)

		c.Set(ContextLangKey, lang)
		c.Set(ContextCatalogKey, cat)
		c.Header("Content-Language", lang)
		c.Next()
	}
}

// Lang язык текущего запроса.
func Lang(c *gin.Context) string {
	if v, ok := c.Get(ContextLangKey); ok {
		if lang, ok := v.(string); ok {
			return lang
		}
	}
	return catalogFrom(c).DefaultLanguage()
}

func catalogFrom(c *gin.Context) *catalog.Catalog {
	if v, ok := c.Get(ContextCatalogKey); ok {
		if cat, ok := v.(*catalog.Catalog); ok {
			return cat
		}
	}
	return catalog.Default()
}

// Catalog каталог текущего запроса.
func Catalog(c *gin.Context) *catalog.Catalog {
	return catalogFrom(c)
}
