package settings

// Setting keys as stored in the settings table. Values are JSON text.
const (
	KeySessionCapMale           = "session_cap_male"
	KeySessionCapFemale         = "session_cap_female"
	KeyScanCooldownSeconds      = "scan_cooldown_seconds"
	KeyWarningDaysBeforeExpiry  = "warning_days_before_expiry"
	KeyWarningSessionsRemaining = "warning_sessions_remaining"
	KeyNextCardSerial           = "next_card_serial"
)

// Settings is the typed view of the key/value table, read once per
// operation so the engine never does string-keyed lookups mid-decision.
type Settings struct {
	SessionCapMale           int
	SessionCapFemale         int
	ScanCooldownSeconds      int
	WarningDaysBeforeExpiry  int
	WarningSessionsRemaining int
	NextCardSerial           int64
}

func Defaults() *Settings {
	return &Settings{
		SessionCapMale:           26,
		SessionCapFemale:         30,
		ScanCooldownSeconds:      30,
		WarningDaysBeforeExpiry:  3,
		WarningSessionsRemaining: 3,
		NextCardSerial:           1,
	}
}

// SessionCapFor returns the default monthly session cap for a gender.
func (s *Settings) SessionCapFor(gender string) int {
	if gender == "female" {
		return s.SessionCapFemale
	}
	return s.SessionCapMale
}
