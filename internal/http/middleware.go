package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type actor struct {
	ID       string
	Username string
	Roles    []string
}

type actorCtxKey struct{}

func actorFromCtx(ctx context.Context) (actor, bool) {
	a, ok := ctx.Value(actorCtxKey{}).(actor)
	return a, ok
}

func (rtr *router) panicMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				rtr.log.Error("panic recovered",
					"error", err,
					"stack", debug.Stack(),
				)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (rtr *router) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rtr.log.Info("request",
			slog.String("method", r.Method),
			slog.String("url", r.URL.String()),
			slog.String("remote_addr", r.RemoteAddr),
		)
		next.ServeHTTP(w, r)
	})
}

func (rtr *router) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			rtr.handleError(w, newResponseError(ErrCodeUnauthorized, "missing auth token"))
			return
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return rtr.secret, nil
		})
		if err != nil || !token.Valid {
			rtr.handleError(w, newResponseError(ErrCodeUnauthorized, "invalid token"))
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			rtr.handleError(w, newResponseError(ErrCodeUnauthorized, "invalid token claims"))
			return
		}

		a := actor{}
		if sub, ok := claims["sub"].(string); ok {
			a.ID = sub
		}
		if username, ok := claims["username"].(string); ok {
			a.Username = username
		}
		if rawRoles, ok := claims["roles"].([]any); ok {
			for _, raw := range rawRoles {
				if role, ok := raw.(string); ok {
					a.Roles = append(a.Roles, role)
				}
			}
		}
		if a.ID == "" {
			rtr.handleError(w, newResponseError(ErrCodeUnauthorized, "invalid token claims"))
			return
		}

		ctx := context.WithValue(r.Context(), actorCtxKey{}, a)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (rtr *router) requireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a, ok := actorFromCtx(r.Context())
			if !ok {
				rtr.handleError(w, newResponseError(ErrCodeUnauthorized, "missing auth token"))
				return
			}
			for _, role := range roles {
				if slices.Contains(a.Roles, role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			rtr.handleError(w, newResponseError(ErrCodeForbidden, "insufficient role"))
		})
	}
}
