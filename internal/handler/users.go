package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/domain"
	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

var userConstraintMessages = map[string]string{
	"users_username_key": "用户名已存在",
	"users_email_key":    "邮箱已存在",
}

type createUserRequest struct {
	Username string      `json:"username" validate:"required,max=32"`
	FullName string      `json:"fullName" validate:"required,max=32"`
	Email    string      `json:"email" validate:"required,email"`
	Role     domain.Role `json:"role" validate:"required,role"`
}

type myInfoView struct {
	*domain.User
	CanEditSchedule bool `json:"canEditSchedule"`
}

func (h *Handler) GetMyInfo(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	h.successResponse(w, r, "获取个人信息成功", myInfoView{
		User:            myInfo,
		CanEditSchedule: myInfo.Role.CanEditSchedule(),
	})
}

func (h *Handler) GetAllUserInfo(w http.ResponseWriter, r *http.Request) {
	users, err := h.repository.GetAllUsers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取用户列表成功", users)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest

	if !h.decodeRequest(w, r, &req) {
		return
	}

	password := utils.GenerateRandomPassword(h.config.NewUser.PasswordLength)
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user := &domain.User{
		Username:     req.Username,
		PasswordHash: string(hashedPassword),
		FullName:     req.FullName,
		Email:        req.Email,
		Role:         req.Role,
	}

	if err := h.repository.CreateUser(user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if msg, ok := userConstraintMessages[pgErr.ConstraintName]; ok {
				h.errorResponse(w, r, msg)
				return
			}
		}
		h.internalServerError(w, r, err)
		return
	}

	// 初始密码只通过邮件告知
	if err := h.publishMail(newAccountMail(user, password)); err != nil {
		slog.Error("无法投递新用户邮件", "username", user.Username, "error", err)
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "用户创建成功", user)
}

func newAccountMail(user *domain.User, password string) domain.MailMessage {
	return domain.MailMessage{
		Type: domain.MailTypeCreateUser,
		To:   user.Email,
		Data: domain.CreateUserMailData{
			FullName: user.FullName,
			Username: user.Username,
			Password: password,
			Role:     string(user.Role),
		},
	}
}
