package intl

import (
	"context"

	"github.com/iota-uz/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/iota-uz/hrdesk/pkg/constants"
)

// Dictionary resolves message ids through a localizer. Missing ids resolve
// to themselves.
type Dictionary struct {
	localizer *i18n.Localizer
	locale    language.Tag
}

func NewDictionary(bundle *i18n.Bundle, locale language.Tag) *Dictionary {
	return &Dictionary{localizer: i18n.NewLocalizer(bundle, locale.String()), locale: locale}
}

func (d *Dictionary) Locale() language.Tag {
	return d.locale
}

func (d *Dictionary) T(key string, data ...map[string]any) string {
	if d == nil || d.localizer == nil || key == "" {
		return key
	}
	cfg := &i18n.LocalizeConfig{MessageID: key}
	if len(data) > 0 && data[0] != nil {
		cfg.TemplateData = data[0]
	}
	// A message missing in the locale still comes back in the default
	// language alongside an error.
	msg, _ := d.localizer.Localize(cfg)
	if msg == "" {
		return key
	}
	return msg
}

func WithDictionary(ctx context.Context, d *Dictionary) context.Context {
	ctx = context.WithValue(ctx, constants.LocalizerKey, d)
	return context.WithValue(ctx, constants.LocaleKey, d.locale)
}

// UseDictionary returns the request dictionary. The second value is false
// outside of a localized request.
func UseDictionary(ctx context.Context) (*Dictionary, bool) {
	d, ok := ctx.Value(constants.LocalizerKey).(*Dictionary)
	return d, ok && d != nil
}

func UseLocale(ctx context.Context) language.Tag {
	if tag, ok := ctx.Value(constants.LocaleKey).(language.Tag); ok {
		return tag
	}
	return language.English
}
