package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/kaigo-records/care-records/backend/internal/bulk"
	"github.com/kaigo-records/care-records/backend/internal/domain"
	"github.com/kaigo-records/care-records/backend/internal/sessions"
)

const tokenCookieName = "__care_records_token"

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		duration := time.Since(start)
		slog.Info("已处理请求", "status", rw.StatusCode, "ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "duration", duration)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				fmt.Print(string(debug.Stack()))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(tokenCookieName)
		if err != nil {
			switch {
			case errors.Is(err, http.ErrNoCookie):
				h.errorResponse(w, r, "职员未登录")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		claims := &AuthClaims{}
		_, err = jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(h.config.JWT.Secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			h.errorResponse(w, r, "无效的令牌")
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, AdminCtxKey, claims.IsAdmin)
		ctx = context.WithValue(ctx, SubCtxKey, claims.Subject)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// myInfo 每次请求都重新读取职员信息，停用的职员即使令牌未过期也无法继续操作
func (h *Handler) myInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subString := r.Context().Value(SubCtxKey).(string)

		sub, err := strconv.ParseInt(subString, 10, 64)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		staff, err := h.repository.GetStaffByID(sub)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "职员信息不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		if !staff.IsActive {
			h.errorResponse(w, r, "该职员已停用")
			return
		}

		ctx := context.WithValue(r.Context(), MyInfoCtx, staff)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) RequiredAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		isAdmin, _ := r.Context().Value(AdminCtxKey).(bool)
		if !isAdmin {
			h.forbidden(w, r, "权限不足")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) category(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := domain.ParseCategory(chi.URLParam(r, "category"))
		if err != nil {
			h.notFound(w, r, "未知的记录类别")
			return
		}

		ctx := context.WithValue(r.Context(), CategoryCtx, c)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := r.Context().Value(CategoryCtx).(domain.Category)

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			h.errorResponse(w, r, "记录ID无效")
			return
		}

		rec, err := h.repository.GetCategoryRecord(c, id)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.notFound(w, r, "记录不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), RecordCtx, rec)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// preventOperateOthersRecord 只有记录的作者本人可以修改或删除记录
func (h *Handler) preventOperateOthersRecord(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		myInfo := r.Context().Value(MyInfoCtx).(*domain.Staff)
		rec := r.Context().Value(RecordCtx).(domain.Record)

		if rec.Meta().StaffID != myInfo.ID {
			h.forbidden(w, r, "无权操作他人的记录")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) bulkSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := h.sessions.Load(chi.URLParam(r, "id"))
		if err != nil {
			switch {
			case errors.Is(err, sessions.ErrSessionNotFound):
				h.notFound(w, r, err.Error())
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), BulkSessionCtx, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// preventOperateOthersSession 批量录入会话只属于创建它的职员
func (h *Handler) preventOperateOthersSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		myInfo := r.Context().Value(MyInfoCtx).(*domain.Staff)
		session := r.Context().Value(BulkSessionCtx).(*bulk.Session)

		if session.StaffID != myInfo.ID {
			h.forbidden(w, r, "无权操作他人的批量录入")
			return
		}
		next.ServeHTTP(w, r)
	})
}
