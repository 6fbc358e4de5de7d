package models

import "time"

type User struct {
	Id           string    `json:"id" gorm:"column:id;primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:100"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;size:255"`
	IsActive     bool      `json:"isActive" gorm:"default:true"`
	IsAdmin      bool      `json:"isAdmin" gorm:"default:false"`
	CreatedAt    time.Time `json:"createdAt"`

	Reports []WasteReport `json:"-" gorm:"foreignKey:UserID"`
}

type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
}

type UpdateProfileInput struct {
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
	Username *string `json:"username,omitempty" binding:"omitempty,min=3,max=100"`
}

type ChangePasswordInput struct {
	OldPassword             string `json:"oldPassword" binding:"required"`
	NewPassword             string `json:"newPassword" binding:"required,min=8"`
	NewPasswordConfirmation string `json:"newPasswordConfirmation" binding:"required"`
}

type UserParams struct {
	Id string `path:"id"`
}

type ListUsersParams struct {
	Page    int `query:"page"`
	PerPage int `query:"perPage"`
}
