package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/cleancity-app/waste-report-api/pkg/api/auth"
	"github.com/cleancity-app/waste-report-api/pkg/api/helpers/problem"
	"github.com/cleancity-app/waste-report-api/pkg/api/models"
	"github.com/cleancity-app/waste-report-api/pkg/api/repositories"
)

// AuthService implements registration, login and profile management.
type AuthService struct {
	users  repositories.UserRepository
	tokens *auth.TokenManager
}

func NewAuthService(users repositories.UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

func (s *AuthService) Register(ctx context.Context, in models.RegisterInput) (*models.User, error) {
	if existing, err := s.users.GetByEmail(ctx, in.Email); err != nil {
		return nil, problem.NewInternalServerError("could not check email: " + err.Error())
	} else if existing != nil {
		return nil, problem.NewBadRequest("email", "a user with this email already exists")
	}
	if existing, err := s.users.GetByUsername(ctx, in.Username); err != nil {
		return nil, problem.NewInternalServerError("could not check username: " + err.Error())
	} else if existing != nil {
		return nil, problem.NewBadRequest("username", "a user with this username already exists")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, problem.NewInternalServerError("could not hash password")
	}
	user := &models.User{
		Id:           uuid.New().String(),
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	if err := s.users.Save(user); err != nil {
		return nil, problem.NewInternalServerError("could not save user: " + err.Error())
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, in models.LoginInput) (*models.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, problem.NewInternalServerError("could not look up user: " + err.Error())
	}
	if user == nil || auth.VerifyPassword(in.Password, user.PasswordHash) != nil {
		return nil, problem.NewUnauthorized("incorrect email or password")
	}
	if !user.IsActive {
		return nil, problem.NewForbidden(in.Email, "account is inactive")
	}

	token, err := s.tokens.Issue(user.Id, user.IsAdmin)
	if err != nil {
		return nil, problem.NewInternalServerError("could not issue token")
	}
	return &models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
	}, nil
}

func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, problem.NewInternalServerError("could not look up user: " + err.Error())
	}
	if user == nil {
		return nil, problem.NewNotFound(id, "user not found")
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, user *models.User, in models.UpdateProfileInput) (*models.User, error) {
	if in.Email != nil && *in.Email != user.Email {
		if existing, err := s.users.GetByEmail(ctx, *in.Email); err != nil {
			return nil, problem.NewInternalServerError("could not check email: " + err.Error())
		} else if existing != nil {
			return nil, problem.NewBadRequest("email", "a user with this email already exists")
		}
		user.Email = *in.Email
	}
	if in.Username != nil && *in.Username != user.Username {
		if existing, err := s.users.GetByUsername(ctx, *in.Username); err != nil {
			return nil, problem.NewInternalServerError("could not check username: " + err.Error())
		} else if existing != nil {
			return nil, problem.NewBadRequest("username", "a user with this username already exists")
		}
		user.Username = *in.Username
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, problem.NewInternalServerError("could not update user: " + err.Error())
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, user *models.User, in models.ChangePasswordInput) error {
	if err := auth.VerifyPassword(in.OldPassword, user.PasswordHash); err != nil {
		if errors.Is(err, auth.ErrHashMismatch) {
			return problem.NewBadRequest("oldPassword", "incorrect current password")
		}
		return problem.NewInternalServerError("could not verify password")
	}
	if in.NewPassword != in.NewPasswordConfirmation {
		return problem.NewBadRequest("newPasswordConfirmation", "new password and confirmation do not match")
	}
	if in.NewPassword == in.OldPassword {
		return problem.NewBadRequest("newPassword", "new password must differ from the current password")
	}

	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return problem.NewInternalServerError("could not hash password")
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return problem.NewInternalServerError("could not update password: " + err.Error())
	}
	return nil
}
