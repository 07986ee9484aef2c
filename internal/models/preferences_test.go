package models

import "testing"

func TestUserPreferences_Apply(t *testing.T) {
	t.Parallel()

	dark := ThemeDark
	off := false

	tests := []struct {
		name  string
		patch PreferencesPatch
		want  UserPreferences
	}{
		{
			name:  "empty patch keeps defaults",
			patch: PreferencesPatch{},
			want:  DefaultPreferences(),
		},
		{
			name:  "theme and markdown",
			patch: PreferencesPatch{Theme: &dark, EnableMarkdown: &off},
			want: UserPreferences{
				Theme:          ThemeDark,
				FontSize:       FontSizeMedium,
				ResponseStyle:  ResponseStyleDetailed,
				ShowTimestamps: true,
				EnableMarkdown: false,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := DefaultPreferences().Apply(tt.patch); got != tt.want {
				t.Errorf("Apply() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMessageRole_Valid(t *testing.T) {
	t.Parallel()

	for role, want := range map[MessageRole]bool{
		MessageRoleUser:      true,
		MessageRoleAssistant: true,
		"model":              false,
		"":                   false,
	} {
		if got := role.Valid(); got != want {
			t.Errorf("MessageRole(%q).Valid() = %v, want %v", role, got, want)
		}
	}
}
