package model

// Setting is a persisted key-value configuration entry.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SettingAuthMode selects the token verification mode exposed to clients.
const SettingAuthMode = "auth_mode"
