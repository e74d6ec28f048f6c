package domain

import (
	"time"
)

type Role string

const (
	RoleAdmin  Role = "管理员"
	RoleEditor Role = "编辑者"
	RoleViewer Role = "查看者"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// CanEditSchedule 只有管理员和编辑者可以修改营业时间
func (r Role) CanEditSchedule() bool {
	return r == RoleAdmin || r == RoleEditor
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}
