package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/arnavshah/shiftboard/pkg/config"
	"github.com/arnavshah/shiftboard/pkg/database"
	"github.com/arnavshah/shiftboard/pkg/models"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var jwtAlgorithm = jwt.SigningMethodHS256

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Claims represents the JWT claims
type Claims struct {
	StaffID  int64  `json:"staff_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Viewer is the identity the claims grant.
func (c *Claims) Viewer() models.Viewer {
	return models.Viewer{ID: c.StaffID, Role: models.ParseRole(c.Role)}
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Tokens signs and verifies bearer tokens with one HMAC secret.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// CreateToken creates a new JWT token for a staff account
func (t *Tokens) CreateToken(staffID int64, username string, role models.Role) (string, error) {
	now := t.now()
	claims := &Claims{
		StaffID:  staffID,
		Username: username,
		Role:     string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(staffID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwtAlgorithm, claims)
	return token.SignedString(t.secret)
}

// VerifyToken verifies a JWT token
func (t *Tokens) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Authenticate checks a username and password against the staff table.
func Authenticate(db *gorm.DB, username, password string) (*database.Staff, error) {
	var staff database.Staff
	if err := db.Where("username = ? AND is_active = ?", username, true).First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !CheckPasswordHash(password, staff.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return &staff, nil
}

// seedStaff are the demo accounts created when seeding is enabled.
var seedStaff = []struct {
	Username string
	FullName string
}{
	{"staff1", "Staff One"},
	{"staff2", "Staff Two"},
}

// EnsureAdminExists creates the default manager account when it is missing,
// and the demo staff accounts when seed is set. Seeded accounts share the
// configured admin password.
func EnsureAdminExists(db *gorm.DB, cfg config.AuthConfig, seed bool, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	username := cfg.AdminUsername
	if username == "" {
		username = "admin"
	}
	password := cfg.AdminPassword
	if password == "" {
		password = "admin123"
	}
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	accounts := []database.Staff{{Username: username, FullName: "Administrator", Role: string(models.RoleManager)}}
	if seed {
		for _, s := range seedStaff {
			accounts = append(accounts, database.Staff{Username: s.Username, FullName: s.FullName, Role: string(models.RoleStaff)})
		}
	}

	var hash string
	for _, acct := range accounts {
		var count int64
		if err := db.Model(&database.Staff{}).Where("username = ?", acct.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if hash == "" {
			h, err := HashPassword(password, cost)
			if err != nil {
				return err
			}
			hash = h
		}
		acct.PasswordHash = hash
		acct.IsActive = true
		if err := db.Create(&acct).Error; err != nil {
			return err
		}
		logger.Info("seeded staff account", zap.String("username", acct.Username), zap.String("role", acct.Role))
	}
	return nil
}

// ViewerFromToken reads the viewer out of a token without checking its
// signature. Clients use it to decide what to render; the server still
// verifies every request.
func ViewerFromToken(tokenString string) (models.Viewer, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return models.Viewer{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims.Viewer(), nil
}
