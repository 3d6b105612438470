package types

// TrimHexPrefix strips a leading 0x or 0X and reports whether one was there
func TrimHexPrefix(s string) (string, bool) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:], true
	}
	return s, false
}
