package catalog

// Option элемент справочника в ответе API.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// LocalizedCatalog справочники на одном языке.
type LocalizedCatalog struct {
	Language      string   `json:"language"`
	Areas         []Option `json:"areas"`
	ListingTypes  []Option `json:"listing_types"`
	PropertyTypes []Option `json:"property_types"`
	Utilities     []Option `json:"utilities"`
	UtilityStates []Option `json:"utility_states"`
	ReportReasons []Option `json:"report_reasons"`
}

// LocalizedTip совет безопасности на одном языке.
type LocalizedTip struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// LocalizedSafety советы и тревожные признаки.
type LocalizedSafety struct {
	Language string         `json:"language"`
	Tips     []LocalizedTip `json:"tips"`
	RedFlags []string       `json:"red_flags"`
}

// Localized возвращает все справочники на языке lang.
func (c *Catalog) Localized(lang string) LocalizedCatalog {
	return LocalizedCatalog{
		Language:      lang,
		Areas:         c.options(c.Areas, lang),
		ListingTypes:  c.options(c.ListingTypes, lang),
		PropertyTypes: c.options(c.PropertyTypes, lang),
		Utilities:     c.options(c.Utilities, lang),
		UtilityStates: c.options(c.UtilityStates, lang),
		ReportReasons: c.options(c.ReportReasons, lang),
	}
}

// SafetyGuide советы по безопасности на языке lang.
func (c *Catalog) SafetyGuide(lang string) LocalizedSafety {
	out := LocalizedSafety{
		Language: lang,
		Tips:     make([]LocalizedTip, 0, len(c.Safety.Tips)),
		RedFlags: make([]string, 0, len(c.Safety.RedFlags)),
	}
	for _, tip := range c.Safety.Tips {
		out.Tips = append(out.Tips, LocalizedTip{
			Title:       c.Text(tip.Title, lang),
			Description: c.Text(tip.Description, lang),
		})
	}
	for _, flag := range c.Safety.RedFlags {
		out.RedFlags = append(out.RedFlags, c.Text(flag, lang))
	}
	return out
}

func (c *Catalog) options(entries []Entry, lang string) []Option {
	out := make([]Option, 0, len(entries))
	for _, e := range entries {
		out = append(out, Option{Value: e.Code, Label: c.Text(e.Labels, lang)})
	}
	return out
}
