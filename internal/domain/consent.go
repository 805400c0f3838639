package domain

import "time"

// ConsentPreferences категории согласия посетителя. Necessary всегда true и
// не переключается пользователем.
type ConsentPreferences struct {
	Necessary   bool `json:"necessary"`
	Analytics   bool `json:"analytics"`
	Advertising bool `json:"advertising"`
}

// ConsentState зафиксированное решение посетителя. Перезаписывается целиком
// при каждом сохранении (accept-all / reject-all / custom).
type ConsentState struct {
	HasConsented bool               `json:"hasConsented"`
	Preferences  ConsentPreferences `json:"preferences"`
	Timestamp    time.Time          `json:"timestamp"`
}

// DefaultConsentPreferences возвращает преференции до решения пользователя.
func DefaultConsentPreferences() ConsentPreferences {
	return ConsentPreferences{
		Necessary:   true,
		Analytics:   false,
		Advertising: false,
	}
}
