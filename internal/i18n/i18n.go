// Package i18n holds the user-facing message catalog. Messages are keyed by
// error code or reply ID and resolved in the caller's locale.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var (
	mu            sync.RWMutex
	bundle        *i18n.Bundle
	defaultLocale = "ar"
	supported     = []language.Tag{language.Arabic, language.English}
	matcher       = language.NewMatcher(supported)
)

type ctxKey struct{}

// Init loads all locale files and sets the default locale.
func Init(defLocale string) error {
	b := i18n.NewBundle(language.Arabic)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return fmt.Errorf("i18n: read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return fmt.Errorf("i18n: read %s: %w", e.Name(), err)
		}
		if _, err := b.ParseMessageFileBytes(data, e.Name()); err != nil {
			return fmt.Errorf("i18n: parse %s: %w", e.Name(), err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	bundle = b
	if defLocale != "" {
		defaultLocale = defLocale
	}
	return nil
}

func loaded() *i18n.Bundle {
	mu.RLock()
	b := bundle
	mu.RUnlock()
	if b != nil {
		return b
	}
	if err := Init(""); err != nil {
		panic(err)
	}
	mu.RLock()
	defer mu.RUnlock()
	return bundle
}

// DefaultLocale returns the configured fallback locale.
func DefaultLocale() string {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLocale
}

// WithLocale returns a new context carrying the given locale string (e.g. "ar", "en").
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, ctxKey{}, locale)
}

// LocaleFromContext extracts the locale from the context.
// Returns the configured default locale if not set.
func LocaleFromContext(ctx context.Context) string {
	if ctx != nil {
		if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
			return v
		}
	}
	return DefaultLocale()
}

// MatchLocale picks the best supported locale for an Accept-Language header.
func MatchLocale(acceptLanguage string) string {
	if acceptLanguage == "" {
		return DefaultLocale()
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLocale()
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return DefaultLocale()
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// T translates a message ID using the locale from the context.
// Optional templateData provides values for template placeholders.
func T(ctx context.Context, messageID string, templateData ...map[string]any) string {
	msg, ok := lookup(ctx, messageID, templateData...)
	if !ok {
		return messageID
	}
	return msg
}

// TOr translates messageID or returns fallback when the catalog has no entry.
func TOr(ctx context.Context, messageID, fallback string) string {
	msg, ok := lookup(ctx, messageID)
	if !ok {
		return fallback
	}
	return msg
}

func lookup(ctx context.Context, messageID string, templateData ...map[string]any) (string, bool) {
	l := i18n.NewLocalizer(loaded(), LocaleFromContext(ctx), DefaultLocale())

	cfg := &i18n.LocalizeConfig{MessageID: messageID}
	if len(templateData) > 0 && templateData[0] != nil {
		cfg.TemplateData = templateData[0]
	}

	msg, err := l.Localize(cfg)
	if err != nil {
		return "", false
	}
	return msg, true
}
