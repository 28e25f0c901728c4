package entity

// CanSendOtpToken is implemented by users that can receive a token.
type CanSendOtpToken interface {
	// ColumnForOtpToken returns the destination stored in field.
	ColumnForOtpToken(field string) string
}

// GenericUser is a user loaded as a flat attribute map.
type GenericUser struct {
	Attributes map[string]string
}

func (u *GenericUser) ColumnForOtpToken(field string) string {
	if u == nil {
		return ""
	}
	return u.Attributes[field]
}
