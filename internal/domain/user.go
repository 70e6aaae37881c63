package domain

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCompany Role = "company"
	RoleUnion   Role = "union"
)

type User struct {
	ID           int64     `json:"id" gorm:"column:id;primaryKey"`
	Email        string    `json:"email" validate:"required,email" gorm:"column:email;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"column:password_hash"`
	Name         string    `json:"name" gorm:"column:name"`
	Role         Role      `json:"role" gorm:"column:role"`
	CompanyID    int64     `json:"company_id,omitempty" gorm:"column:company_id"`
	UnionID      int64     `json:"union_id,omitempty" gorm:"column:union_id"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (User) TableName() string { return "users" }
