package model

// Number formats offered in settings.
const (
	NumberFormatComma = 0 // 1,234.56
	NumberFormatDot   = 1 // 1.234,56
)

// Settings is the single process-wide preferences document.
type Settings struct {
	Currency          string `json:"currency"`
	NumberFormat      int    `json:"numberFormat"`
	BiometricsEnabled bool   `json:"biometricsEnabled"`
}

// DefaultSettings returns the settings used when none are stored.
func DefaultSettings() Settings {
	return Settings{
		BiometricsEnabled: true,
		Currency:          "USD",
		NumberFormat:      NumberFormatComma,
	}
}
