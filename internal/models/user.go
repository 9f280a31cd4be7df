// Package models contains the persistent row types shared by repositories
// and services.
package models

import (
	"fmt"
	"strings"
	"time"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User is a Mini App user keyed by the immutable Telegram user ID.
// Created on first successful authentication; display attributes are
// refreshed on every subsequent login.
type User struct {
	ID             int64
	TelegramUserID int64
	Username       string
	FirstName      string
	LastName       string
	LanguageCode   string
	Role           UserRole
	IsBlocked      bool
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// FullName joins the name parts, falling back to the username and finally
// to a synthetic "User <id>" label.
func (u *User) FullName() string {
	parts := make([]string, 0, 2)
	if u.FirstName != "" {
		parts = append(parts, u.FirstName)
	}
	if u.LastName != "" {
		parts = append(parts, u.LastName)
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	if u.Username != "" {
		return u.Username
	}
	return fmt.Sprintf("User %d", u.TelegramUserID)
}
