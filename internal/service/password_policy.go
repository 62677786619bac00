package service

import (
	"unicode"

	"github.com/ghost-toolkit/internal/config"
)

// passwordPolicyError 弱密码错误，携带 i18n 键与参数
type passwordPolicyError struct {
	key  string
	args []interface{}
}

func (e passwordPolicyError) Error() string        { return e.key }
func (e passwordPolicyError) Is(target error) bool { return target == ErrWeakPassword }
func (e passwordPolicyError) Key() string          { return e.key }
func (e passwordPolicyError) Args() []interface{}  { return e.args }

type passwordClasses struct {
	upper, lower, number, special bool
}

func classifyPassword(password string) passwordClasses {
	var classes passwordClasses
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			classes.upper = true
		case unicode.IsLower(r):
			classes.lower = true
		case unicode.IsDigit(r):
			classes.number = true
		default:
			classes.special = true
		}
	}
	return classes
}

// validatePassword 按策略校验管理员密码，返回第一条未满足的规则
func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	if policy.MinLength > 0 && len([]rune(password)) < policy.MinLength {
		return passwordPolicyError{key: "error.password_min_length", args: []interface{}{policy.MinLength}}
	}
	classes := classifyPassword(password)
	checks := []struct {
		required bool
		present  bool
		key      string
	}{
		{policy.RequireUpper, classes.upper, "error.password_require_upper"},
		{policy.RequireLower, classes.lower, "error.password_require_lower"},
		{policy.RequireNumber, classes.number, "error.password_require_number"},
		{policy.RequireSpecial, classes.special, "error.password_require_special"},
	}
	for _, check := range checks {
		if check.required && !check.present {
			return passwordPolicyError{key: check.key}
		}
	}
	return nil
}
