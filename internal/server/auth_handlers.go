package server

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"traveldesk/internal/models"
	"traveldesk/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authPayload struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register handles new account creation. Every account starts with the
// regular user role; admins are promoted out of band (seed or SQL).
func (s *Server) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	fields := map[string][]string{}
	if err := validation.ValidateName(req.Name); err != nil {
		fields["name"] = append(fields["name"], err.Error())
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		fields["email"] = append(fields["email"], err.Error())
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		fields["password"] = append(fields["password"], err.Error())
	}
	if len(fields) > 0 {
		return models.RespondWithError(c,
			models.NewFieldValidationError(fields, "The given data was invalid"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hash),
		Role:     models.RoleUser,
	}
	if err := s.userRepo.Create(c.UserContext(), user); err != nil {
		return models.RespondWithError(c, err)
	}

	token, err := s.generateToken(user)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	slog.InfoContext(c.UserContext(), "user registered",
		"user_id", user.ID, "email", user.Email)

	return respondStatus(c, fiber.StatusCreated, "Account created",
		authPayload{Token: token, User: user})
}

// Login verifies credentials and issues a JWT.
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	user, err := s.userRepo.GetByEmail(c.UserContext(), req.Email)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	// Run the comparison even for unknown emails so response timing
	// does not reveal whether an account exists.
	storedHash := "$2a$10$invalidinvalidinvalidinvalidinvalidinvalidinvalidinv"
	if user != nil {
		storedHash = user.Password
	}
	if bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(req.Password)) != nil || user == nil {
		return models.RespondWithError(c,
			models.NewUnauthorizedError("Invalid email or password"))
	}

	token, err := s.generateToken(user)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	slog.InfoContext(c.UserContext(), "user logged in", "user_id", user.ID)

	return respondOK(c, "Logged in", authPayload{Token: token, User: user})
}

// Refresh issues a new token and revokes the presented one.
func (s *Server) Refresh(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return nil
	}

	s.blacklistCurrentToken(c)

	token, err := s.generateToken(user)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return respondOK(c, "Token refreshed", authPayload{Token: token, User: user})
}

// Logout revokes the presented token until its natural expiry.
func (s *Server) Logout(c *fiber.Ctx) error {
	s.blacklistCurrentToken(c)
	return respondOK(c, "Logged out", nil)
}

// Me returns the authenticated user's profile.
func (s *Server) Me(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	return respondOK(c, "OK", user)
}

func (s *Server) blacklistCurrentToken(c *fiber.Ctx) {
	jti, ok := c.Locals("jti").(string)
	if !ok || jti == "" || s.redis == nil {
		return
	}
	ttl := tokenTTL
	if exp, ok := c.Locals("tokenExp").(int64); ok {
		if remaining := time.Until(time.Unix(exp, 0)); remaining > 0 {
			ttl = remaining
		}
	}
	if err := s.redis.Set(c.Context(), "blacklist:"+jti, "1", ttl).Err(); err != nil {
		slog.WarnContext(c.UserContext(), "failed to blacklist token", "error", err)
	}
}

func (s *Server) generateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(user.ID), 10),
		"role": string(user.Role),
		"iss":  tokenIssuer,
		"aud":  tokenAudience,
		"exp":  now.Add(tokenTTL).Unix(),
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
		"jti":  uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}
