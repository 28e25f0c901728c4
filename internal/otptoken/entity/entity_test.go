package entity

import "testing"

func TestStatusMessagesCoverEveryStatus(t *testing.T) {
	statuses := []Status{StatusOtpSent, StatusActionCompleted, StatusInvalidUser, StatusInvalidToken, StatusOtpThrottled}

	for locale, messages := range StatusMessages {
		for _, s := range statuses {
			if messages[s.String()] == "" {
				t.Errorf("locale %q has no message for %q", locale, s)
			}
		}
	}
}

func TestGenericUserColumn(t *testing.T) {
	u := &GenericUser{Attributes: map[string]string{"phone": "+15550001"}}

	if got := u.ColumnForOtpToken("phone"); got != "+15550001" {
		t.Errorf("ColumnForOtpToken(phone) = %q", got)
	}
	if got := u.ColumnForOtpToken("email"); got != "" {
		t.Errorf("ColumnForOtpToken(email) = %q, want empty", got)
	}

	var nilUser *GenericUser
	if got := nilUser.ColumnForOtpToken("phone"); got != "" {
		t.Errorf("nil ColumnForOtpToken = %q", got)
	}
}
