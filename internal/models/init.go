package models

import (
	"errors"
	"strings"

	"github.com/ghost-toolkit/internal/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const defaultAdminPassword = "admin123"

// InitDefaultAdmin 初始化默认管理员账号，passwordHash 优先于明文密码
func InitDefaultAdmin(db *gorm.DB, username, password, passwordHash string) error {
	if db == nil {
		return errors.New("database not initialized")
	}
	var count int64
	if err := db.Model(&Admin{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	username = strings.TrimSpace(username)
	if username == "" {
		username = "admin"
	}
	hash := strings.TrimSpace(passwordHash)
	if hash == "" {
		if password == "" {
			password = defaultAdminPassword
		}
		generated, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		hash = string(generated)
	}

	admin := Admin{
		Username:     username,
		PasswordHash: hash,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	if passwordHash == "" && password == defaultAdminPassword {
		logger.Warnw("default_admin_created_with_default_password", "username", username)
		logger.Warnw("default_admin_password_change_required", "username", username)
	} else {
		logger.Warnw("default_admin_created", "username", username, "password_hidden", true)
	}
	return nil
}
