package auth

// SetComparePassword swaps the password comparison for the duration of a test
func SetComparePassword(f func(password, hash string) bool) (restore func()) {
	prev := comparePassword
	comparePassword = f
	return func() { comparePassword = prev }
}

func UnknownUserHash() string {
	return unknownUserHash()
}
