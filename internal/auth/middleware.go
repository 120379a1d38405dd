package auth

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/aldoetobex/legalflow-backend/internal/store"
	"github.com/aldoetobex/legalflow-backend/pkg/models"
)

/* ============================== JWT Claims ============================== */

// Claims represents the JWT payload we issue and expect.
type Claims struct {
	jwt.RegisteredClaims
}

/* ============================== JWT Helpers ============================= */

// IssueToken signs an HS256 JWT for the given user that expires after ttl.
func IssueToken(secret string, ttl time.Duration, userID uint) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// parseToken returns the user id carried by a valid token.
func parseToken(secret, tokenStr string) (uint, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return 0, fiber.ErrUnauthorized
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return 0, fiber.ErrUnauthorized
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.ErrUnauthorized
	}
	return uint(id), nil
}

/* ============================== Middleware ============================== */

// Authenticate reads an optional Bearer JWT and injects userID into the
// context. A present but invalid token is always rejected; a missing token is
// rejected only when required is true.
func Authenticate(secret string, required bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		h := c.Get("Authorization")
		if h == "" {
			if required {
				return fiber.ErrUnauthorized
			}
			return c.Next()
		}
		if !strings.HasPrefix(h, "Bearer ") {
			return fiber.ErrUnauthorized
		}
		id, err := parseToken(secret, strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			return err
		}
		c.Locals("userID", id)
		return c.Next()
	}
}

// RequireAuth validates a Bearer JWT and rejects requests without one.
func RequireAuth(secret string) fiber.Handler {
	return Authenticate(secret, true)
}

// UserID reads the authenticated user ID from context, if any.
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("userID").(uint)
	return id, ok
}

// MustUserID reads the authenticated user ID from context or panics (programming error).
func MustUserID(c *fiber.Ctx) uint {
	if id, ok := UserID(c); ok {
		return id
	}
	panic(errors.New("user not in context"))
}

/* =========================== Error Formatting =========================== */

// httpCodeToString converts an HTTP status code to a short, stable string.
func httpCodeToString(code int) string {
	switch code {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusConflict:
		return "CONFLICT"
	case fiber.StatusUnprocessableEntity:
		return "UNPROCESSABLE_ENTITY"
	case fiber.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case fiber.StatusUnsupportedMediaType:
		return "UNSUPPORTED_MEDIA_TYPE"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}

// statusOf maps store sentinels and Fiber errors to a status and message.
func statusOf(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		msg := strings.TrimSpace(fe.Message)
		if msg == "" {
			msg = "Internal Server Error"
		}
		return fe.Code, msg
	case errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound, "Record not found"
	case errors.Is(err, store.ErrClientHasCases):
		return fiber.StatusConflict, "Cannot delete client with active cases. Please remove or reassign all cases first."
	case errors.Is(err, store.ErrDuplicate):
		return fiber.StatusConflict, err.Error()
	case errors.Is(err, store.ErrInvalidReference):
		return fiber.StatusBadRequest, err.Error()
	default:
		return fiber.StatusInternalServerError, "Internal Server Error"
	}
}

// ErrorHandler returns the global Fiber error handler. Every error leaves as
// models.ErrorResponse; unexpected ones are logged with the request id.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *fiber.Ctx, err error) error {
		code, msg := statusOf(err)
		if code >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Any("request_id", c.Locals("requestid")),
				zap.Error(err),
			)
		}
		return c.Status(code).JSON(models.ErrorResponse{
			Code:    httpCodeToString(code),
			Error:   true,
			Message: msg,
		})
	}
}
