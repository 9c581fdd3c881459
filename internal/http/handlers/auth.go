package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"rentalportal/internal/http/middleware"
	"rentalportal/internal/repositories"
	"rentalportal/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func signToken(userID int64, role, email string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"email":   email,
		"exp":     time.Now().Add(tokenTTL).Unix(),
	})
	return token.SignedString([]byte(env().JWTSecret))
}

// POST /api/auth/login
func Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		RespondError(c, http.StatusBadRequest, "email and password are required", nil)
		return
	}

	repo := repositories.UserRepository{}
	user, hash, err := repo.GetByEmail(req.Email)
	if err != nil {
		// Same response for unknown email and bad password.
		RespondError(c, http.StatusUnauthorized, "invalid email or password", nil)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		RespondError(c, http.StatusUnauthorized, "invalid email or password", nil)
		return
	}

	token, err := signToken(user.ID, user.Role, user.Email)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "failed to issue token", err)
		return
	}

	utils.LogEvent(middleware.GetRequestID(c), "auth", "login", "user_id="+strconv.FormatInt(user.ID, 10))
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// POST /api/auth/register
func Register(c *gin.Context) {
	var req registerRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" || req.Email == "" {
		RespondError(c, http.StatusBadRequest, "name and email are required", nil)
		return
	}
	if len(req.Password) < 8 {
		RespondError(c, http.StatusBadRequest, "password must be at least 8 characters", nil)
		return
	}

	repo := repositories.UserRepository{}
	exists, err := repo.EmailExists(req.Email)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "failed to check email", err)
		return
	}
	if exists {
		RespondError(c, http.StatusConflict, "email already registered", nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "failed to hash password", err)
		return
	}

	id, err := repo.Create(req.Name, req.Email, strings.TrimSpace(req.Phone), string(hash))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "failed to create user", err)
		return
	}

	token, err := signToken(id, "user", req.Email)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "failed to issue token", err)
		return
	}

	utils.LogEvent(middleware.GetRequestID(c), "auth", "register", "user_id="+strconv.FormatInt(id, 10))
	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user": gin.H{
			"id":    id,
			"name":  req.Name,
			"email": req.Email,
			"phone": req.Phone,
			"role":  "user",
		},
	})
}

// GET /api/auth/me
func Me(c *gin.Context) {
	rc := middleware.GetAuth(c)
	repo := repositories.UserRepository{}
	user, err := repo.GetByID(rc.UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// PUT /api/auth/me
func UpdateMe(c *gin.Context) {
	rc := middleware.GetAuth(c)

	var req struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	}
	if !BindJSONOrError(c, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		RespondError(c, http.StatusBadRequest, "name is required", nil)
		return
	}

	repo := repositories.UserRepository{}
	if err := repo.UpdateProfile(rc.UserID, strings.TrimSpace(req.Name), strings.TrimSpace(req.Phone)); err != nil {
		RespondDomainError(c, err)
		return
	}
	user, err := repo.GetByID(rc.UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
