package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/oticonnect/backend/internal/config"
	"github.com/oticonnect/backend/internal/org/entity"
	"github.com/oticonnect/backend/internal/org/repository"
	"github.com/oticonnect/backend/internal/org/workflow"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// GoogleOAuthURL Google OAuth authorization URL
const GoogleOAuthURL = "https://accounts.google.com/o/oauth2/v2/auth"

// GoogleTokenURL Google token exchange URL
const GoogleTokenURL = "https://oauth2.googleapis.com/token"

// GoogleUserInfoURL Google user info URL
const GoogleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// AuthService authentication service
type AuthService struct {
	userRepo *repository.UserRepository
	rdb      *redis.Client
	cfg      *config.Config
}

// NewAuthService creates the authentication service
func NewAuthService(userRepo *repository.UserRepository, rdb *redis.Client, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		rdb:      rdb,
		cfg:      cfg,
	}
}

// TokenPair access/refresh token pair
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RegisterReq registration parameters
type RegisterReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

// Register creates a local account with a bcrypt-hashed password
func (s *AuthService) Register(ctx context.Context, req RegisterReq) (*entity.User, *TokenPair, error) {
	if _, err := s.userRepo.FindByEmail(ctx, strings.ToLower(req.Email)); err == nil {
		return nil, nil, workflow.Validatef("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{
		ID:                 uuid.New().String(),
		Email:              strings.ToLower(req.Email),
		Password:           string(hash),
		Name:               req.Name,
		Role:               entity.RoleMember,
		DivisionStatus:     entity.DivisionStatusPending,
		HeadApprovalStatus: entity.HeadApprovalPending,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	pair, err := s.GenerateTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Login verifies credentials and issues a token pair
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, *TokenPair, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, nil, workflow.Denyf("invalid email or password")
	}
	if user.Password == "" {
		// Google OAuth account with no local password
		return nil, nil, workflow.Denyf("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, workflow.Denyf("invalid email or password")
	}

	pair, err := s.GenerateTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// GetGoogleLoginURL builds the Google OAuth consent URL
func (s *AuthService) GetGoogleLoginURL(state string) string {
	params := url.Values{}
	params.Set("client_id", s.cfg.Google.ClientID)
	params.Set("redirect_uri", s.cfg.Google.RedirectURI)
	params.Set("response_type", "code")
	params.Set("scope", "openid email profile")
	params.Set("state", state)

	return fmt.Sprintf("%s?%s", GoogleOAuthURL, params.Encode())
}

// googleTokenResponse Google token exchange response
type googleTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
	IDToken     string `json:"id_token"`
}

// googleUserInfo Google user info response
type googleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// HandleGoogleCallback exchanges the authorization code, resolves the Google
// profile and creates or links the local account.
func (s *AuthService) HandleGoogleCallback(ctx context.Context, code string) (*entity.User, *TokenPair, error) {
	accessToken, err := s.exchangeGoogleCode(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("exchange code: %w", err)
	}

	info, err := s.getGoogleUserInfo(ctx, accessToken)
	if err != nil {
		return nil, nil, fmt.Errorf("get user info: %w", err)
	}

	user, err := s.createOrLinkGoogleUser(ctx, info)
	if err != nil {
		return nil, nil, fmt.Errorf("create or link user: %w", err)
	}

	pair, err := s.GenerateTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *AuthService) exchangeGoogleCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", s.cfg.Google.ClientID)
	form.Set("client_secret", s.cfg.Google.ClientSecret)
	form.Set("redirect_uri", s.cfg.Google.RedirectURI)
	form.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, GoogleTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp googleTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", err
	}
	return tokenResp.AccessToken, nil
}

func (s *AuthService) getGoogleUserInfo(ctx context.Context, accessToken string) (*googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, GoogleUserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (s *AuthService) createOrLinkGoogleUser(ctx context.Context, info *googleUserInfo) (*entity.User, error) {
	if user, err := s.userRepo.FindByGoogleID(ctx, info.ID); err == nil {
		return user, nil
	}

	// link by email when the account already exists locally
	if user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(info.Email)); err == nil {
		user.GoogleID = info.ID
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}

	user := &entity.User{
		ID:                 uuid.New().String(),
		Email:              strings.ToLower(info.Email),
		Name:               info.Name,
		Role:               entity.RoleMember,
		GoogleID:           info.ID,
		DivisionStatus:     entity.DivisionStatusPending,
		HeadApprovalStatus: entity.HeadApprovalPending,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GenerateTokenPair issues an access token and a refresh token; the refresh
// token id is kept in Redis so it can be rotated and revoked.
func (s *AuthService) GenerateTokenPair(ctx context.Context, user *entity.User) (*TokenPair, error) {
	now := time.Now()
	accessExpire := s.cfg.JWT.AccessTokenExpire

	accessClaims := jwt.MapClaims{
		"sub":   user.ID,
		"uid":   user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
		"iss":   s.cfg.JWT.Issuer,
		"iat":   now.Unix(),
		"exp":   now.Add(accessExpire).Unix(),
		"jti":   uuid.New().String(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshID := uuid.New().String()
	refreshClaims := jwt.MapClaims{
		"sub": user.ID,
		"uid": user.ID,
		"typ": "refresh",
		"iss": s.cfg.JWT.Issuer,
		"iat": now.Unix(),
		"exp": now.Add(s.cfg.JWT.RefreshTokenExpire).Unix(),
		"jti": refreshID,
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	if s.rdb != nil {
		key := "refresh:" + refreshID
		if err := s.rdb.Set(ctx, key, user.ID, s.cfg.JWT.RefreshTokenExpire).Err(); err != nil {
			return nil, fmt.Errorf("store refresh token: %w", err)
		}
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(accessExpire.Seconds()),
	}, nil
}

// Refresh validates a refresh token against Redis, revokes it, and issues a
// fresh pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	token, err := jwt.Parse(refreshToken, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.Secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil, workflow.Denyf("invalid or expired refresh token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, workflow.Denyf("invalid refresh token claims")
	}
	if typ, _ := claims["typ"].(string); typ != "refresh" {
		return nil, workflow.Denyf("not a refresh token")
	}
	jti, _ := claims["jti"].(string)
	userID, _ := claims["uid"].(string)
	if jti == "" || userID == "" {
		return nil, workflow.Denyf("invalid refresh token claims")
	}

	if s.rdb != nil {
		key := "refresh:" + jti
		stored, err := s.rdb.Get(ctx, key).Result()
		if err != nil || stored != userID {
			return nil, workflow.Denyf("refresh token revoked")
		}
		// single use: rotate on refresh
		s.rdb.Del(ctx, key)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return s.GenerateTokenPair(ctx, user)
}
