package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/loopfz/gadgeto/tonic"
	"go.uber.org/zap"

	api "github.com/cleancity-app/waste-report-api/pkg/api"
	"github.com/cleancity-app/waste-report-api/pkg/api/auth"
	"github.com/cleancity-app/waste-report-api/pkg/api/config"
	"github.com/cleancity-app/waste-report-api/pkg/api/database"
	"github.com/cleancity-app/waste-report-api/pkg/api/handler"
	problem "github.com/cleancity-app/waste-report-api/pkg/api/helpers/problem"
	"github.com/cleancity-app/waste-report-api/pkg/api/repositories"
	"github.com/cleancity-app/waste-report-api/pkg/api/services"
	"github.com/cleancity-app/waste-report-api/pkg/api/uploads"
	"github.com/cleancity-app/waste-report-api/pkg/jobs"
	"github.com/cleancity-app/waste-report-api/pkg/logger"
)

const apiVersion = "1.0.0"

func invalidParamsFromBinding(err error, sample any) []problem.InvalidParam {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []problem.InvalidParam{{Name: "body", Reason: err.Error()}}
	}

	t := reflect.TypeOf(sample)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	out := make([]problem.InvalidParam, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if t != nil {
			if f, ok := t.FieldByName(fe.StructField()); ok {
				if tag := f.Tag.Get("json"); tag != "" && tag != "-" {
					name = strings.Split(tag, ",")[0]
				}
			}
		}
		out = append(out, problem.InvalidParam{
			Name:   name,
			Reason: humanReason(fe),
		})
	}
	return out
}

func humanReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "is too short"
	case "max":
		return "is too long"
	default:
		return fe.Error()
	}
}

func init() {
	tonic.SetErrorHook(func(c *gin.Context, err error) (int, interface{}) {
		var be tonic.BindError
		if errors.As(err, &be) || isValidationErr(err) {
			invalids := invalidParamsFromBinding(err, nil)
			apiErr := problem.NewBadRequest("body", "invalid input", invalids...)
			c.Header("Content-Type", "application/problem+json")
			return apiErr.Status, apiErr
		}

		if apiErr, ok := err.(problem.APIError); ok {
			c.Header("Content-Type", "application/problem+json")
			return apiErr.Status, apiErr
		}

		internal := problem.NewInternalServerError(err.Error())
		c.Header("Content-Type", "application/problem+json")
		return internal.Status, internal
	})
}

func isValidationErr(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}

func main() {
	_ = godotenv.Load()

	log, err := logger.New()
	if err != nil {
		os.Stderr.WriteString("CRITICAL: failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	db, err := database.Connect(cfg.Database.DSN)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	userRepo := repositories.NewUserRepository(db)
	reportRepo := repositories.NewReportRepository(db)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	intake := uploads.New(uploads.Config{
		Root:         cfg.Uploads.Root,
		MaxFileSize:  cfg.Uploads.MaxFileSize,
		MaxBatchSize: cfg.Uploads.MaxBatchSize,
	}, log)

	authService := services.NewAuthService(userRepo, tokens)
	reportService := services.NewReportService(reportRepo, intake, cfg.Uploads.FailOpen, log)
	adminService := services.NewAdminService(reportRepo)

	jobs.ScheduleDailyCleanup(context.Background(), intake, reportRepo, log)

	router := api.NewRouter(apiVersion, api.RouterDeps{
		Auth:        handler.NewAuthController(authService),
		Users:       handler.NewUsersController(authService, userRepo),
		Reports:     handler.NewReportsController(reportService),
		Admin:       handler.NewAdminController(adminService),
		Tokens:      tokens,
		UserRepo:    userRepo,
		CORSOrigins: cfg.CORS.AllowOrigins,
	})

	log.Info("server is running", zap.String("addr", cfg.Server.Addr))
	if err := http.ListenAndServe(cfg.Server.Addr, router); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}
