package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/iep-planner-api/internal/models"
	"github.com/noah-isme/iep-planner-api/internal/repository"
	"github.com/noah-isme/iep-planner-api/pkg/config"
	appErrors "github.com/noah-isme/iep-planner-api/pkg/errors"
)

// ShareRequest configures a new share link.
type ShareRequest struct {
	Passcode string `json:"passcode" validate:"omitempty,min=4,max=72"`
	TTLHours int    `json:"ttlHours" validate:"min=0"`
}

// ShareService issues and resolves signed read-only links to a student's latest plan.
type ShareService struct {
	store     repository.ProfileStore
	config    config.ShareConfig
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewShareService builds a ShareService.
func NewShareService(store repository.ProfileStore, cfg config.ShareConfig, validate *validator.Validate, logger *zap.Logger) *ShareService {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 72 * time.Hour
	}
	if cfg.MaxTTL <= 0 {
		cfg.MaxTTL = 30 * 24 * time.Hour
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShareService{store: store, config: cfg, validator: validate, logger: logger, now: time.Now}
}

// Issue signs a token for the student's latest plan.
func (s *ShareService) Issue(ctx context.Context, studentID string, req ShareRequest) (*models.ShareLink, error) {
	if s.config.Secret == "" {
		return nil, appErrors.Clone(appErrors.ErrInternal, "share links are not configured")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid share payload")
	}
	profile, err := loadProfile(ctx, s.store, studentID)
	if err != nil {
		return nil, err
	}
	if profile.LatestPlan == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no plan has been generated for this student")
	}

	ttl := s.config.DefaultTTL
	if req.TTLHours > 0 {
		ttl = time.Duration(req.TTLHours) * time.Hour
	}
	if ttl > s.config.MaxTTL {
		ttl = s.config.MaxTTL
	}

	claims := &models.ShareClaims{Scope: models.ShareScopePlanRead}
	if req.Passcode != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Passcode), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to secure passcode")
		}
		claims.PasscodeHash = string(hash)
	}

	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    s.config.Issuer,
		Subject:   profile.ID,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		NotBefore: jwt.NewNumericDate(issuedAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign share link")
	}

	s.logger.Info("share link issued",
		zap.String("student_id", profile.ID),
		zap.String("token_id", claims.ID),
		zap.Time("expires_at", expiresAt),
	)
	return &models.ShareLink{
		Token:            signed,
		StudentID:        profile.ID,
		ExpiresAt:        expiresAt,
		PasscodeRequired: claims.PasscodeHash != "",
	}, nil
}

// ValidateToken parses a share token and checks its signature, expiry and scope.
func (s *ShareService) ValidateToken(tokenString string) (*models.ShareClaims, error) {
	opts := []jwt.ParserOption{jwt.WithTimeFunc(s.now)}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.ShareClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid share link")
	}

	claims, ok := token.Claims.(*models.ShareClaims)
	if !ok || !token.Valid || claims.Scope != models.ShareScopePlanRead || claims.Subject == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid share link claims")
	}
	return claims, nil
}

// SharedPlan returns the plan a validated link points to, checking the passcode when required.
func (s *ShareService) SharedPlan(ctx context.Context, claims *models.ShareClaims, passcode string) (*models.LearningPlan, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.PasscodeHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(claims.PasscodeHash), []byte(passcode)); err != nil {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "passcode required")
		}
	}
	profile, err := loadProfile(ctx, s.store, claims.Subject)
	if err != nil {
		return nil, err
	}
	if profile.LatestPlan == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no plan has been generated for this student")
	}
	return profile.LatestPlan, nil
}
