package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/jjangmi46/thirtymall-monitor/internal/pkg/errors"
	applog "github.com/jjangmi46/thirtymall-monitor/pkg/log"
	"github.com/labstack/echo/v4"
)

const (
	// headerXAppKey 애플리케이션 인증용 HTTP 헤더 키 (Authorization 헤더의 대안)
	headerXAppKey = "X-App-Key"

	// bearerPrefix Authorization 헤더의 Bearer 스킴 접두사
	bearerPrefix = "Bearer "
)

// errorResponse 모든 에러 응답에 사용되는 표준 JSON 형식입니다.
type errorResponse struct {
	ResultCode int    `json:"result_code"`
	Message    string `json:"message"`
}

// requireAppKey App Key 인증을 수행하는 미들웨어를 반환합니다.
//
// App Key 추출 우선순위:
//  1. Authorization: Bearer <app_key> 헤더 (권장)
//  2. X-App-Key 헤더
//
// 키 비교는 타이밍 공격 방지를 위해 상수 시간으로 수행됩니다.
func requireAppKey(appKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			provided := extractAppKey(c)
			if provided == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "App Key가 필요합니다")
			}

			if subtle.ConstantTimeCompare([]byte(provided), []byte(appKey)) != 1 {
				applog.WithComponentAndFields(component, applog.Fields{
					"path":      c.Request().URL.Path,
					"remote_ip": c.RealIP(),
				}).Warn("인증 실패: 잘못된 App Key 수신")

				return echo.NewHTTPError(http.StatusUnauthorized, "유효하지 않은 App Key입니다")
			}

			return next(c)
		}
	}
}

// extractAppKey 요청에서 App Key를 추출합니다.
func extractAppKey(c echo.Context) string {
	if authorization := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(authorization, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(authorization, bearerPrefix))
	}

	return strings.TrimSpace(c.Request().Header.Get(headerXAppKey))
}

// requestLogger HTTP 요청/응답을 구조화된 로그로 기록하는 미들웨어를 반환합니다.
func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// 상태 코드가 로그에 반영되도록 에러 핸들러를 먼저 실행합니다.
				c.Error(err)
			}

			applog.WithComponentAndFields(component, applog.Fields{
				"method":      c.Request().Method,
				"path":        c.Request().URL.Path,
				"status_code": c.Response().Status,
				"latency_ms":  time.Since(start).Milliseconds(),
				"remote_ip":   c.RealIP(),
				"request_id":  c.Response().Header().Get(echo.HeaderXRequestID),
			}).Info("HTTP 요청 처리 완료")

			return nil
		}
	}
}

// errorHandler Echo 프레임워크의 전역 에러 핸들러입니다.
//
// 모든 HTTP 에러를 표준 errorResponse JSON 형식으로 변환하여 반환하며,
// 에러 종류에 따라 적절한 로그 레벨(Error/Warn)로 기록합니다.
func errorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	message := "요청 처리 중 내부 오류가 발생하였습니다"

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		}
	} else {
		code = statusFromError(err)
		if code < http.StatusInternalServerError {
			message = err.Error()
		}
	}

	fields := applog.Fields{
		"method":      c.Request().Method,
		"path":        c.Request().URL.Path,
		"status_code": code,
		"error":       err,
		"remote_ip":   c.RealIP(),
	}

	if code >= http.StatusInternalServerError {
		applog.WithComponentAndFields(component, fields).Error("HTTP 서버 오류 응답")
	} else {
		applog.WithComponentAndFields(component, fields).Warn("HTTP 클라이언트 오류 응답")
	}

	if c.Response().Committed {
		return
	}

	if c.Request().Method == http.MethodHead {
		c.NoContent(code)
		return
	}

	c.JSON(code, errorResponse{
		ResultCode: code,
		Message:    message,
	})
}

// statusFromError 내부 에러 타입을 HTTP 상태 코드로 변환합니다.
func statusFromError(err error) int {
	switch {
	case apperrors.Is(err, apperrors.InvalidInput):
		return http.StatusBadRequest
	case apperrors.Is(err, apperrors.NotFound):
		return http.StatusNotFound
	case apperrors.Is(err, apperrors.Unavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
