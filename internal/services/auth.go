package services

import (
  "context"
  "fmt"

  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"

  "github.com/pagecraft-org/pagecraft-backend/internal/apperr"
  "github.com/pagecraft-org/pagecraft-backend/internal/logger"
  "github.com/pagecraft-org/pagecraft-backend/internal/requestdata"
)

// Token issuance lives with the external identity provider; this service only
// verifies the bearer token it minted and resolves the owning user.
type JWTClaims struct {
  jwt.RegisteredClaims
}

type AuthService interface {
  SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
  log          *logger.Logger
  jwtSecretKey string
}

func NewAuthService(log *logger.Logger, jwtSecretKey string) AuthService {
  return &authService{
    log:          log.With("service", "AuthService"),
    jwtSecretKey: jwtSecretKey,
  }
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  claims := &JWTClaims{}
  token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
    if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
      return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
    }
    return []byte(as.jwtSecretKey), nil
  })
  if err != nil || !token.Valid {
    as.log.Debug("token verification failed", "error", err)
    return ctx, fmt.Errorf("invalid token: %w", apperr.ErrUnauthenticated)
  }
  userID, err := uuid.Parse(claims.Subject)
  if err != nil {
    as.log.Debug("token subject is not a user id", "subject", claims.Subject)
    return ctx, fmt.Errorf("invalid token subject: %w", apperr.ErrUnauthenticated)
  }
  rd := &requestdata.RequestData{
    TokenString: tokenString,
    UserID:      userID,
  }
  return requestdata.WithRequestData(ctx, rd), nil
}
