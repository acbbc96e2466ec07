package password

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrWeakPassword password rejected by the strength policy
var ErrWeakPassword = errors.New("password does not meet strength requirements")

var (
	upperRe   = regexp.MustCompile(`[A-Z]`)
	digitRe   = regexp.MustCompile(`[0-9]`)
	specialRe = regexp.MustCompile(`[!@#\$%\^&\*]`)
)

// MinLength shortest accepted password
const MinLength = 8

// ValidateStrength 驗證密碼強度, 建帳號前先在本地擋掉
func ValidateStrength(pw string) error {
	if len(pw) < MinLength {
		return fmt.Errorf("%w: must be at least %d characters long", ErrWeakPassword, MinLength)
	}

	// 至少包含一個大寫字母
	if !upperRe.MatchString(pw) {
		return fmt.Errorf("%w: must contain at least one uppercase letter", ErrWeakPassword)
	}

	// 至少包含一個數字
	if !digitRe.MatchString(pw) {
		return fmt.Errorf("%w: must contain at least one digit", ErrWeakPassword)
	}

	// 至少包含一個特殊字符
	if !specialRe.MatchString(pw) {
		return fmt.Errorf("%w: must contain at least one special character (!@#$%%^&*)", ErrWeakPassword)
	}
	return nil
}
