package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// 電話番号が空
	ErrPhoneRequired = errors.New("phone is required")
	// 電話番号の形式が不正
	ErrInvalidPhone = errors.New("invalid phone")
	// パスワードが空
	ErrPasswordRequired = errors.New("password is required")
	// パスワードが短い
	ErrPasswordTooShort = errors.New("password too short")
	// 名前が長すぎる
	ErrNameTooLong = errors.New("name too long")
)

// パスワード最低文字数
const MinPasswordLength = 6

// 名前の最大文字数（DBのvarchar(255)）
const MaxNameLength = 255

// 先頭の+は任意。数字7〜20桁
var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,20}$`)

// 前後の空白を落とす
func NormalizePhone(phone string) string {
	return strings.TrimSpace(phone)
}

// サインアップの入力を検証
func ValidateSignup(phone string, name string, password string) error {
	if err := ValidatePhone(phone); err != nil {
		return err
	}
	if len([]rune(strings.TrimSpace(name))) > MaxNameLength {
		return ErrNameTooLong
	}
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// ログインの入力を検証（形式チェックはしない。存在しなければ404）
func ValidateLogin(phone string, password string) error {
	if NormalizePhone(phone) == "" {
		return ErrPhoneRequired
	}
	if password == "" {
		return ErrPasswordRequired
	}
	return nil
}

func ValidatePhone(phone string) error {
	phone = NormalizePhone(phone)
	if phone == "" {
		return ErrPhoneRequired
	}
	if !phonePattern.MatchString(phone) {
		return ErrInvalidPhone
	}
	return nil
}
