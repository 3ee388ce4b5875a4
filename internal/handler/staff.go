package handler

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/kaigo-records/care-records/backend/internal/domain"
	"github.com/kaigo-records/care-records/backend/internal/utils"
)

func (h *Handler) GetActiveStaff(w http.ResponseWriter, r *http.Request) {
	staffList, err := h.repository.ListActiveStaff()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取职员列表成功", staffList)
}

func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name" validate:"required"`
		NameReading string `json:"nameReading"`
		PIN         string `json:"pin" validate:"omitempty,numeric,min=4,max=8"`
		IsAdmin     bool   `json:"isAdmin"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 只有管理员可以不设置 PIN
	if !req.IsAdmin && req.PIN == "" {
		h.errorResponse(w, r, "普通职员必须设置 PIN")
		return
	}

	staff := &domain.Staff{
		Name:        req.Name,
		NameReading: req.NameReading,
		IsAdmin:     req.IsAdmin,
	}

	if staff.NameReading == "" {
		staff.NameReading = utils.GenerateNameReading(staff.Name)
	}

	if req.PIN != "" {
		pinHash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		staff.PINHash = string(pinHash)
	}

	if err := h.repository.CreateStaff(staff); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "staff_name_key":
			h.badRequest(w, r, errors.New("职员姓名已存在"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建职员成功", staff)
}
