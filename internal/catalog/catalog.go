// Package catalog содержит справочники (районы, типы, причины жалоб, советы безопасности)
// и локализованные тексты ответов API.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var rawCatalog []byte

// Labels подписи по коду языка.
type Labels map[string]string

// Entry элемент справочника.
type Entry struct {
	Code   string `yaml:"code"`
	Labels Labels `yaml:"labels"`
}

// SafetyTip совет по безопасности.
type SafetyTip struct {
	Title       Labels `yaml:"title"`
	Description Labels `yaml:"description"`
}

// Catalog справочники и сообщения.
type Catalog struct {
	Languages     []string                     `yaml:"languages"`
	Areas         []Entry                      `yaml:"areas"`
	ListingTypes  []Entry                      `yaml:"listing_types"`
	PropertyTypes []Entry                      `yaml:"property_types"`
	Utilities     []Entry                      `yaml:"utilities"`
	UtilityStates []Entry                      `yaml:"utility_states"`
	ReportReasons []Entry                      `yaml:"report_reasons"`
	Messages      map[string]Labels            `yaml:"messages"`
	Fields        map[string]map[string]Labels `yaml:"fields"`
	Safety        struct {
		Tips     []SafetyTip `yaml:"tips"`
		RedFlags []Labels    `yaml:"red_flags"`
	} `yaml:"safety"`

	matcher   language.Matcher
	areaIndex map[string]string
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default возвращает встроенный каталог. Паника означает битый catalog.yaml в сборке.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(rawCatalog)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Parse разбирает YAML каталога и строит индексы.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("catalog: не удалось разобрать yaml: %w", err)
	}
	if len(c.Languages) == 0 {
		return nil, fmt.Errorf("catalog: не задан ни один язык")
	}

	tags := make([]language.Tag, 0, len(c.Languages))
	for _, code := range c.Languages {
		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("catalog: неизвестный язык %q: %w", code, err)
		}
		tags = append(tags, tag)
	}
	c.matcher = language.NewMatcher(tags)

	c.areaIndex = make(map[string]string, len(c.Areas)*3)
	for _, area := range c.Areas {
		c.areaIndex[normalizeKey(area.Code)] = area.Code
		for _, label := range area.Labels {
			c.areaIndex[normalizeKey(label)] = area.Code
		}
	}

	return &c, nil
}

// DefaultLanguage первый язык каталога.
func (c *Catalog) DefaultLanguage() string {
	return c.Languages[0]
}

// Match выбирает язык ответа по заголовку Accept-Language.
func (c *Catalog) Match(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return c.DefaultLanguage()
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return c.DefaultLanguage()
	}
	_, idx, confidence := c.matcher.Match(tags...)
	if confidence == language.No {
		return c.DefaultLanguage()
	}
	return c.Languages[idx]
}

// Text возвращает подпись на нужном языке, при отсутствии на языке по умолчанию.
func (c *Catalog) Text(labels Labels, lang string) string {
	if v, ok := labels[lang]; ok && v != "" {
		return v
	}
	return labels[c.DefaultLanguage()]
}

// Message локализованное сообщение по ключу. Неизвестный ключ возвращается как есть.
func (c *Catalog) Message(lang, key string, args ...any) string {
	labels, ok := c.Messages[key]
	if !ok {
		return key
	}
	text := c.Text(labels, lang)
	if len(args) > 0 {
		return fmt.Sprintf(text, args...)
	}
	return text
}

// FieldMessage текст ошибки валидации поля.
func (c *Catalog) FieldMessage(lang, field, rule string) string {
	if rules, ok := c.Fields[field]; ok {
		if labels, ok := rules[rule]; ok {
			return c.Text(labels, lang)
		}
	}
	return c.Message(lang, "validation_failed")
}

// ResolveArea принимает код района или его подпись на любом языке и возвращает код.
func (c *Catalog) ResolveArea(input string) (string, bool) {
	code, ok := c.areaIndex[normalizeKey(input)]
	return code, ok
}

// IsArea проверяет, что строка является кодом района.
func (c *Catalog) IsArea(code string) bool {
	for _, area := range c.Areas {
		if area.Code == code {
			return true
		}
	}
	return false
}

// Label подпись элемента справочника по коду.
func (c *Catalog) Label(entries []Entry, code, lang string) string {
	for _, e := range entries {
		if e.Code == code {
			return c.Text(e.Labels, lang)
		}
	}
	return code
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
