package mockapi

import (
	"crypto/rand"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MrEthical07/portalAuth/jwt"
	"github.com/MrEthical07/portalAuth/password"
	"github.com/MrEthical07/portalAuth/role"
	"github.com/MrEthical07/portalAuth/session"
)

const (
	RefreshCookie = "refresh_token"

	msgBadCredentials = "Incorrect email or password"
	msgUserExists     = "The user with this username already exists in the system."
	msgRefreshMissing = "Refresh token missing"
	msgInvalidToken   = "Could not validate credentials"
	msgTokenNotGiven  = "Token not provided"
	msgUserNotFound   = "User not found"
	msgLoggedOut      = "Logged out successfully"
	defaultPlan       = "free"
	defaultCredits    = 100
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
)

// Config configures the mock backend.
type Config struct {
	JWT          jwt.Config
	Password     password.Config
	CookieSecure bool
}

type account struct {
	user session.User
	hash string
}

// Server holds users in memory. It is safe for concurrent use.
type Server struct {
	cfg    Config
	tokens *jwt.Manager
	hasher *password.Hasher
	logger zerolog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	byEmail map[string]*account
	byID    map[string]*account
}

// New builds an empty backend. Seed it with [Server.CreateUser].
func New(cfg Config, logger zerolog.Logger) (*Server, error) {
	tokens, err := jwt.NewManager(cfg.JWT)
	if err != nil {
		return nil, err
	}
	hasher, err := password.NewHasher(cfg.Password)
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:     cfg,
		tokens:  tokens,
		hasher:  hasher,
		logger:  logger.With().Str("component", "mockapi").Logger(),
		now:     time.Now,
		byEmail: make(map[string]*account),
		byID:    make(map[string]*account),
	}, nil
}

// CreateUser adds an account directly, for seeding.
func (s *Server) CreateUser(email, pass, fullName string, r role.Role) (session.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := s.hasher.Hash(pass)
	if err != nil {
		return session.User{}, err
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	acc := &account{
		user: session.User{
			ID:          uuid.NewString(),
			Email:       email,
			DisplayName: fullName,
			Role:        r,
			Plan:        defaultPlan,
			Credits:     defaultCredits,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		hash: hash,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[email]; ok {
		return session.User{}, ErrUserExists
	}
	s.byEmail[email] = acc
	s.byID[acc.user.ID] = acc
	return acc.user, nil
}

func (s *Server) lookupEmail(email string) (*account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	return acc, ok
}

func (s *Server) lookupID(id string) (*account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.byID[id]
	return acc, ok
}

// Handler returns the gin engine serving /health and /api/v1/auth.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(loggingMiddleware(s.logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/login", s.login)
		auth.POST("/register", s.register(role.Studio))
		auth.POST("/super-admin/register", s.register(role.Admin))
		auth.POST("/refresh", s.refresh)
		auth.POST("/logout", s.logout)
		auth.GET("/me", s.me)
	}
	return r
}

// DevConfig returns a config with a random HS256 key, short-lived access tokens
// and the cheapest password hashing profile.
func DevConfig() (Config, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return Config{}, err
	}
	pw := password.FastConfig()
	pw.MinPasswordBytes = 1
	return Config{
		JWT: jwt.Config{
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    7 * 24 * time.Hour,
			SigningMethod: jwt.MethodHS256,
			PrivateKey:    key,
			Issuer:        "portal-mockapi",
		},
		Password: pw,
	}, nil
}
