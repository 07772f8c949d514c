// Package i18n localizes the user-facing strings of the BUDDY client.
// The product surface is bilingual: the backend's image and finance
// contracts are Spanish-first, so the client ships both catalogs.
package i18n

import (
	"embed"
	"encoding/json"

	gi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var localizer *gi18n.Localizer

// Init builds a localizer for the requested language, falling back to
// English, and installs it as the package default used by T.
func Init(lang string) (*gi18n.Localizer, error) {
	bundle := gi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		data, err := localeFS.ReadFile("locales/" + entry.Name())
		if err != nil {
			return nil, err
		}
		if _, err := bundle.ParseMessageFileBytes(data, entry.Name()); err != nil {
			return nil, err
		}
	}

	if lang == "" {
		lang = "en"
	}
	loc := gi18n.NewLocalizer(bundle, lang, "en")
	localizer = loc
	return loc, nil
}

// T translates a message ID with the default localizer. Unknown IDs come
// back unchanged so a missing translation never hides program output.
func T(messageID string) string {
	if localizer == nil {
		if _, err := Init(""); err != nil {
			return messageID
		}
	}
	msg, err := localizer.Localize(&gi18n.LocalizeConfig{MessageID: messageID})
	if err != nil {
		return messageID
	}
	return msg
}
