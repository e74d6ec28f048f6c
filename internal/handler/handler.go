package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/config"
	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/domain"
	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/repository"
	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/schedule"
)

var editorRoles = []domain.Role{domain.RoleAdmin, domain.RoleEditor}

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client
	expander    *schedule.Expander

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,
		expander:    schedule.NewExpander(cfg.Schedule.MaxRangeDays),

		Mux: chi.NewRouter(),
	}, nil
}

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, err
	}

	custom := []struct {
		tag     string
		fn      validator.Func
		message string
	}{
		{"role", func(fl validator.FieldLevel) bool {
			return domain.Role(fl.Field().String()).Valid()
		}, "{0}必须是管理员、编辑者或查看者之一"},
		{"clock", func(fl validator.FieldLevel) bool {
			_, err := domain.ParseClock(fl.Field().String())
			return err == nil
		}, "{0}必须是 HH:MM 格式的时间"},
	}
	for _, c := range custom {
		if err := validate.RegisterValidation(c.tag, c.fn); err != nil {
			return nil, nil, err
		}
		err := validate.RegisterTranslation(c.tag, trans, func(ut ut.Translator) error {
			return ut.Add(c.tag, c.message, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(fe.Tag(), fe.Field())
			return t
		})
		if err != nil {
			return nil, nil, err
		}
	}

	return validate, trans, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)
	// 前端通过 cookie 携带令牌，跨域时必须允许 credentials
	h.Mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.config.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{"X-Zone-Version"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.With(httprate.Limit(
			h.config.Server.LoginRateLimit,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(h.tooManyRequests),
		)).Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.With(h.myInfo).Get("/my-info", h.GetMyInfo)

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo)
		})

		r.Route("/zones/{zoneID}", func(r chi.Router) {
			r.Use(h.zoneTimeTable)

			// 查看者也可以读取营业时间
			r.Get("/", h.GetZoneTimeTable)
			r.Get("/cards", h.GetZoneCards)
			r.Get("/cards/{cardID}/form", h.GetCardForm)
			r.Get("/calendar", h.GetZoneCalendar)
			r.Get("/status", h.GetDayStatus)

			r.Group(func(r chi.Router) {
				r.Use(h.RequiredRole(editorRoles))
				r.Use(h.myInfo)
				r.Post("/work-ranges", h.SaveWorkRange)
				r.Post("/special-ranges", h.SaveSpecialRange)
				r.Post("/deletions", h.DeleteRanges)
				r.Delete("/", h.ClearZone)
			})
		})
	})
}
