package auth

import (
	"errors"
	"net/http"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	apperrors "eventsapi/internal/errors"
	"eventsapi/internal/model"
	"eventsapi/internal/repository"
)

const (
	// ClaimsContextKey holds the verified *Claims on the echo context.
	ClaimsContextKey = "claims"
	// UserContextKey holds the resolved *model.User on the echo context.
	UserContextKey = "user"

	bearerPrefix = "Bearer "
)

var errTokenRevoked = errors.New("token revoked")

// Middleware returns the chain guarding protected routes: bearer token
// verification followed by resolution of the token's user.
func Middleware(jwtService *JWTService, tokens TokenStoreInterface, users repository.UserRepository) []echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		ContextKey:  ClaimsContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":" + bearerPrefix,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := jwtService.ValidateToken(token)
			if err != nil {
				return nil, err
			}
			if tokens != nil {
				if revoked, _ := tokens.IsRevoked(c.Request().Context(), claims.ID); revoked {
					return nil, errTokenRevoked
				}
			}
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if !hasBearerToken(c.Request()) {
				return apperrors.ErrTokenMissing
			}
			return apperrors.ErrTokenInvalid
		},
	})

	return []echo.MiddlewareFunc{verify, LoadUser(users)}
}

// LoadUser resolves the user named by the verified claims.
func LoadUser(users repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := CurrentClaims(c)
			if claims == nil {
				return apperrors.ErrTokenInvalid
			}

			user, err := users.FindByID(c.Request().Context(), claims.UserID)
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.ErrUserNotFound
			}
			if err != nil {
				return err
			}

			c.Set(UserContextKey, user)
			return next(c)
		}
	}
}

// CurrentClaims returns the verified claims of the request, if any.
func CurrentClaims(c echo.Context) *Claims {
	claims, _ := c.Get(ClaimsContextKey).(*Claims)
	return claims
}

// CurrentUser returns the authenticated user of the request, if any.
func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(UserContextKey).(*model.User)
	return user
}

func hasBearerToken(r *http.Request) bool {
	header := r.Header.Get(echo.HeaderAuthorization)
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return false
	}
	return strings.TrimSpace(header[len(bearerPrefix):]) != ""
}
