package config

import (
	"os"

	"github.com/spf13/viper"

	"github.com/Veraticus/spice-insights/internal/sheets"
)

// LoadSheetsConfig loads Google Sheets configuration.
// It follows this precedence:
// 1. Viper configuration (from config file or SPICE_ env vars)
// 2. Direct environment variables (GOOGLE_SHEETS_*)
// 3. Default values
func LoadSheetsConfig(v *viper.Viper) (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	lookup := func(key, env string) string {
		if s := v.GetString(key); s != "" {
			return s
		}
		return os.Getenv(env)
	}

	config.ServiceAccountPath = ExpandPath(lookup("sheets.service_account_path", "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"))
	config.ClientID = lookup("sheets.client_id", "GOOGLE_SHEETS_CLIENT_ID")
	config.ClientSecret = lookup("sheets.client_secret", "GOOGLE_SHEETS_CLIENT_SECRET")
	config.RefreshToken = lookup("sheets.refresh_token", "GOOGLE_SHEETS_REFRESH_TOKEN")
	config.SpreadsheetID = lookup("sheets.spreadsheet_id", "GOOGLE_SHEETS_SPREADSHEET_ID")
	if name := lookup("sheets.spreadsheet_name", "GOOGLE_SHEETS_SPREADSHEET_NAME"); name != "" {
		config.SpreadsheetName = name
	}
	if tz := v.GetString("sheets.timezone"); tz != "" {
		config.TimeZone = tz
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}
