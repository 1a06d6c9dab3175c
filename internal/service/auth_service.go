package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"edu-chatbot-be/internal/apperror"
	"edu-chatbot-be/internal/config"
	"edu-chatbot-be/internal/dto"
	"edu-chatbot-be/internal/entity"
	"edu-chatbot-be/internal/pkg/logger"
	"edu-chatbot-be/internal/repository/specification"
	"edu-chatbot-be/internal/repository/unitofwork"
	"edu-chatbot-be/pkg/events"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Me(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error)
}

type authService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher EventPublisher
	logger         logger.ILogger
	authCfg        config.AuthConfig
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher EventPublisher,
	sysLogger logger.ILogger,
	authCfg config.AuthConfig,
) IAuthService {
	return &authService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		logger:         sysLogger,
		authCfg:        authCfg,
	}
}

// Register creates the account and logs the user straight in: the response
// carries a token so the client needs no separate login round trip.
func (c *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	if err := validateClassLevel(req.ClassLevel); err != nil {
		return nil, err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)

	taken, err := uow.UserRepository().Count(ctx, specification.ByUsername{Username: req.Username})
	if err != nil {
		return nil, err
	}
	if taken > 0 {
		return nil, apperror.Validation("username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := entity.User{
		Id:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		ClassLevel:   req.ClassLevel,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uow.UserRepository().Create(ctx, &user); err != nil {
		return nil, err
	}

	signed, expiresAt, err := c.issueToken(user.Id)
	if err != nil {
		return nil, err
	}

	c.publish(ctx, events.NewUserRegisteredEvent(user.Id.String(), user.Username, user.ClassLevel))

	return &dto.RegisterResponse{
		Id:        user.Id,
		Username:  user.Username,
		Token:     signed,
		ExpiresAt: expiresAt,
	}, nil
}

func (c *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByUsername{Username: req.Username})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.ErrUnauthorized
	}

	signed, expiresAt, err := c.issueToken(user.Id)
	if err != nil {
		return nil, err
	}

	c.publish(ctx, events.NewUserLoginEvent(user.Id.String()))

	return &dto.LoginResponse{
		Token:     signed,
		ExpiresAt: expiresAt,
	}, nil
}

func (c *authService) Me(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("user")
	}

	return &dto.UserProfileResponse{
		Id:         user.Id,
		Username:   user.Username,
		Email:      user.Email,
		ClassLevel: user.ClassLevel,
		CreatedAt:  user.CreatedAt,
	}, nil
}

func (c *authService) issueToken(userId uuid.UUID) (string, time.Time, error) {
	expiresAt := time.Now().Add(c.authCfg.TokenExpiry)
	claims := jwt.MapClaims{
		"user_id": userId.String(),
		"exp":     expiresAt.Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(c.authCfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (c *authService) publish(ctx context.Context, evt events.Event) {
	if c.eventPublisher == nil {
		return
	}
	if err := c.eventPublisher.Publish(ctx, evt); err != nil {
		c.logger.Warn("auth_service", "Failed to publish event", map[string]interface{}{
			"event": evt.EventType(),
			"error": err.Error(),
		})
	}
}

func validateClassLevel(classLevel string) error {
	level, err := strconv.Atoi(classLevel)
	if err != nil || level < entity.ClassLevelMin || level > entity.ClassLevelMax {
		return apperror.Validation(fmt.Sprintf("class level must be between %d and %d", entity.ClassLevelMin, entity.ClassLevelMax))
	}
	return nil
}
