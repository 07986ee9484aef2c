package models

// Theme values
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// Font sizes
const (
	FontSizeSmall  = "small"
	FontSizeMedium = "medium"
	FontSizeLarge  = "large"
)

// Response styles
const (
	ResponseStyleConcise  = "concise"
	ResponseStyleDetailed = "detailed"
)

// UserPreferences holds display and assistant settings
type UserPreferences struct {
	Theme          string `json:"theme" validate:"required,oneof=light dark system"`
	FontSize       string `json:"fontSize" validate:"required,oneof=small medium large"`
	ResponseStyle  string `json:"responseStyle" validate:"required,oneof=concise detailed"`
	ShowTimestamps bool   `json:"showTimestamps"`
	EnableMarkdown bool   `json:"enableMarkdown"`
}

// DefaultPreferences returns the settings used before anything is saved
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		Theme:          ThemeSystem,
		FontSize:       FontSizeMedium,
		ResponseStyle:  ResponseStyleDetailed,
		ShowTimestamps: true,
		EnableMarkdown: true,
	}
}

// PreferencesPatch is a partial update. Nil fields keep their current value.
type PreferencesPatch struct {
	Theme          *string `json:"theme,omitempty" validate:"omitempty,oneof=light dark system"`
	FontSize       *string `json:"fontSize,omitempty" validate:"omitempty,oneof=small medium large"`
	ResponseStyle  *string `json:"responseStyle,omitempty" validate:"omitempty,oneof=concise detailed"`
	ShowTimestamps *bool   `json:"showTimestamps,omitempty"`
	EnableMarkdown *bool   `json:"enableMarkdown,omitempty"`
}

// Apply returns p with the patch's non-nil fields applied
func (p UserPreferences) Apply(patch PreferencesPatch) UserPreferences {
	if patch.Theme != nil {
		p.Theme = *patch.Theme
	}
	if patch.FontSize != nil {
		p.FontSize = *patch.FontSize
	}
	if patch.ResponseStyle != nil {
		p.ResponseStyle = *patch.ResponseStyle
	}
	if patch.ShowTimestamps != nil {
		p.ShowTimestamps = *patch.ShowTimestamps
	}
	if patch.EnableMarkdown != nil {
		p.EnableMarkdown = *patch.EnableMarkdown
	}
	return p
}
