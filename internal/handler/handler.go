package handler

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/kaigo-records/care-records/backend/internal/bulk"
	"github.com/kaigo-records/care-records/backend/internal/carestatus"
	"github.com/kaigo-records/care-records/backend/internal/config"
	"github.com/kaigo-records/care-records/backend/internal/notify"
	"github.com/kaigo-records/care-records/backend/internal/repository"
	"github.com/kaigo-records/care-records/backend/internal/sessions"
)

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	repository *repository.Repository
	translator ut.Translator
	location   *time.Location
	builder    *carestatus.Builder
	committer  bulk.Committer
	sessions   *sessions.Registry
	publisher  *notify.Publisher

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		repository: repo,
		translator: trans,
		location:   loc,
		builder:    carestatus.NewBuilder(repo, loc),
		committer:  bulk.NewSequentialCommitter(repo),
		sessions:   sessions.NewRegistry(cfg, rdb),
		publisher:  notify.NewPublisher(cfg, mailCh),

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Use(h.myInfo)

		r.Route("/my-info", func(r chi.Router) {
			r.Get("/", h.GetMyInfo)
			r.Patch("/pin", h.UpdateMyPIN)
		})

		r.Route("/residents", func(r chi.Router) {
			r.Get("/", h.GetActiveResidents)
			r.Get("/floors", h.GetFloors)
			r.With(h.RequiredAdmin).Post("/", h.CreateResident)
		})

		r.Route("/staff", func(r chi.Router) {
			r.Get("/", h.GetActiveStaff)
			r.With(h.RequiredAdmin).Post("/", h.CreateStaff)
		})

		r.Route("/records", func(r chi.Router) {
			r.Get("/daily-status", h.GetDailyStatus)
			r.Get("/today-grid", h.GetTodayGrid)
			r.Get("/today-grid/export", h.ExportTodayGrid)
			r.Get("/timeline", h.GetTimeline)
			r.Get("/search", h.SearchRecords)
			r.Route("/{category}", func(r chi.Router) {
				r.Use(h.category)
				r.Get("/", h.GetCategoryRecords)
				r.Post("/", h.CreateCategoryRecord)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(h.record)
					r.Get("/", h.GetCategoryRecord)
					r.With(h.preventOperateOthersRecord).Put("/", h.UpdateCategoryRecord)
					r.With(h.preventOperateOthersRecord).Delete("/", h.DeleteCategoryRecord)
				})
			})
		})

		r.Route("/bulk-sessions", func(r chi.Router) {
			r.Post("/", h.CreateBulkSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.bulkSession)
				r.Use(h.preventOperateOthersSession)
				r.Get("/", h.GetBulkSession)
				r.Delete("/", h.DeleteBulkSession)
				r.Patch("/drafts/{residentID}", h.UpdateBulkDraft)
				r.Put("/meal-default", h.SetBulkMealDefault)
				r.Post("/commit", h.CommitBulkSession)
				r.Post("/rows/{residentID}/commit", h.CommitBulkRow)
			})
		})
	})
}
