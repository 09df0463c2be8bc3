package objects

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

// User is a deal participant as known to the marketplace account store.
// UserId is the Telegram id and doubles as the chat id for private chats.
type User struct {
	UserId       int64
	AccountID    int64
	Username     string
	FirstName    string
	LastName     string
	LanguageCode string
	po           *gotext.Po
}

var supportedLanguages = map[string]string{
	"en": "English",
	"ru": "Russian",
	"uk": "Ukrainian",
}

// GetSupportedLanguageCode returns the supported language code for the user
// Falls back to English if the user's language is not supported
func (u *User) GetSupportedLanguageCode() string {
	lang := strings.ToLower(u.LanguageCode)

	if _, ok := supportedLanguages[lang]; ok {
		return lang
	}

	// Language family, e.g. ru-RU -> ru
	if len(lang) >= 2 {
		if _, ok := supportedLanguages[lang[:2]]; ok {
			return lang[:2]
		}
	}

	if u.LanguageCode != "" {
		log.Printf("[USER] Language '%s' not supported, defaulting to English", u.LanguageCode)
	}
	return "en"
}

// GetLanguageName returns the human-readable name of the language
func (u *User) GetLanguageName() string {
	return supportedLanguages[u.GetSupportedLanguageCode()]
}

// DisplayName returns @username when present, otherwise the full name.
func (u *User) DisplayName() string {
	if u.Username != "" {
		return "@" + u.Username
	}

	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return fmt.Sprintf("user %d", u.UserId)
	}
	return name
}

// Locale returns the gotext Po for the user
func (u *User) Locale() *gotext.Po {
	if u.po == nil {
		lang := u.GetSupportedLanguageCode()

		u.po = gotext.NewPo()
		poFile := fmt.Sprintf("./locales/all/%s.po", lang)

		// Tests run from the package directory
		if _, err := os.Stat(poFile); os.IsNotExist(err) {
			poFile = fmt.Sprintf("../locales/all/%s.po", lang)
		}
		u.po.ParseFile(poFile)

		log.Printf("[USER] Loaded po file %s for user %d", poFile, u.UserId)
	}
	return u.po
}
