package auth

import (
	"errors"
	"net/mail"
	"time"

	"github.com/go-pkgz/auth/v2"
	"github.com/go-pkgz/auth/v2/avatar"
	"github.com/go-pkgz/auth/v2/provider"
	"github.com/go-pkgz/auth/v2/token"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/decorviz/decor-serve/config"
	"github.com/decorviz/decor-serve/database"
	"github.com/decorviz/decor-serve/models"
)

// Global auth service instance
var authService *auth.Service

// SetupAuthService initializes the JWT/cookie auth service.
func SetupAuthService() *auth.Service {
	options := auth.Opts{
		SecretReader: token.SecretFunc(func(id string) (string, error) {
			return config.Config("JWT_SECRET"), nil
		}),
		TokenDuration:  time.Hour * 24,     // JWT token duration
		CookieDuration: time.Hour * 24 * 7, // Cookie duration
		Issuer:         "decor-serve-app",
		URL:            config.ConfigDefault("APP_URL", "http://localhost:3000"),
		AvatarStore:    avatar.NewLocalFS("/tmp/avatars"),
	}

	service := auth.NewService(options)

	// Direct authentication provider backed by the users table
	service.AddDirectProvider("local", provider.CredCheckerFunc(func(identity, password string) (bool, error) {
		return ValidateUserCredentials(identity, password)
	}))

	authService = service
	return service
}

// GetAuthService returns the auth service instance.
func GetAuthService() *auth.Service {
	return authService
}

// ValidateUserCredentials checks identity (email or username) and password
// against the database.
func ValidateUserCredentials(identity, password string) (bool, error) {
	user, err := FindUserByIdentity(identity)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, nil // User not found
	}

	if !CheckPasswordHash(password, user.Password) {
		return false, nil // Invalid password
	}

	return true, nil
}

// FindUserByIdentity resolves a user by email or username; nil when absent.
func FindUserByIdentity(identity string) (*models.User, error) {
	if isEmail(identity) {
		return getUserBy("email = ?", identity)
	}
	return getUserBy("username = ?", identity)
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	return string(hashed), err
}

func isEmail(identity string) bool {
	_, err := mail.ParseAddress(identity)
	return err == nil
}

func getUserBy(query, value string) (*models.User, error) {
	db := database.GetDB()
	var user models.User
	if err := db.Where(query, value).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
