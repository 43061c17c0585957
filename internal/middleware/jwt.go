package middleware // middleware holds the Echo middleware shared by the routers

import (
    "net/http"
    "strings"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth.
const (
    ContextSubject = "user_id"
    ContextRole    = "role"
)

// JWTAuth validates a Bearer HS256 access token and stores its sub and role
// claims in the context under ContextSubject and ContextRole.
func JWTAuth(secret string) echo.MiddlewareFunc {
    keyFunc := func(t *jwt.Token) (any, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, echo.ErrUnauthorized
        }
        return []byte(secret), nil
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
            if !ok || strings.TrimSpace(raw) == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"message": "missing bearer token"})
            }
            claims := jwt.MapClaims{}
            tok, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, keyFunc, jwt.WithValidMethods([]string{"HS256"}))
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid token"})
            }
            c.Set(ContextSubject, claims["sub"])
            c.Set(ContextRole, claims["role"])
            return next(c)
        }
    }
}
