package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/kaigo-records/care-records/backend/internal/domain"
)

type AuthClaims struct {
	IsAdmin bool `json:"isAdmin"`
	jwt.RegisteredClaims
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StaffID int64  `json:"staffID" validate:"required"`
		PIN     string `json:"pin" validate:"omitempty,numeric,min=4,max=8"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	staff, err := h.repository.GetStaffByID(req.StaffID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "职员不存在或 PIN 错误")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if !staff.IsActive {
		h.errorResponse(w, r, "该职员已停用")
		return
	}

	if err := checkPIN(staff, req.PIN); err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword), errors.Is(err, errPINRequired):
			h.errorResponse(w, r, "职员不存在或 PIN 错误")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	ss, expiration, err := h.signToken(staff)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 通过 http-only 的 cookie 返回给客户端
	cookie := &http.Cookie{
		Name:     tokenCookieName,
		Value:    ss,
		Expires:  expiration,
		Path:     "/",
		HttpOnly: true,
		Secure:   false,
	}

	if h.config.Environment == "production" {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteStrictMode
	}

	http.SetCookie(w, cookie)

	// 最后登录时间只用于展示，更新失败不影响登录
	if err := h.repository.UpdateStaffLastLogin(staff.ID, time.Now()); err != nil {
		slog.Error("无法更新最后登录时间", "staffID", staff.ID, "error", err)
	}

	h.successResponse(w, r, "登录成功", staff)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:    tokenCookieName,
		Value:   "",
		Expires: time.Now().Add(-time.Hour),
		Path:    "/",
	})

	h.successResponse(w, r, "登出成功", nil)
}

var errPINRequired = errors.New("需要输入 PIN")

// checkPIN 管理员未输入 PIN 时直接放行，其他职员必须输入正确的 PIN
func checkPIN(staff *domain.Staff, pin string) error {
	if pin == "" {
		if staff.IsAdmin {
			return nil
		}
		return errPINRequired
	}

	if staff.PINHash == "" {
		return errPINRequired
	}

	return bcrypt.CompareHashAndPassword([]byte(staff.PINHash), []byte(pin))
}

func (h *Handler) signToken(staff *domain.Staff) (string, time.Time, error) {
	now := time.Now()
	expiration := now.Add(time.Duration(h.config.JWT.Expiration) * time.Hour)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		IsAdmin: staff.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   strconv.FormatInt(staff.ID, 10),
		},
	})

	ss, err := token.SignedString([]byte(h.config.JWT.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return ss, expiration, nil
}
