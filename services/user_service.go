package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"staybook/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UserUpdate struct {
	Name     *string `json:"name" validate:"omitempty,max=100"`
	Picture  *string `json:"picture" validate:"omitempty,max=1000"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
}

type GoogleUser struct {
	Name          string
	Email         string
	VerifiedEmail bool
	Picture       string
}

// GoogleVerifier checks a Google ID token against the app's client id.
type GoogleVerifier func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

type UserService struct {
	store
	tokens       *IdentityResolver
	googleClient string
	verifyGoogle GoogleVerifier
}

func NewUserService(db *gorm.DB, cfg StoreConfig, tokens *IdentityResolver, googleClientID string) *UserService {
	return &UserService{
		store:        store{db: db, timeout: cfg.Timeout},
		tokens:       tokens,
		googleClient: googleClientID,
		verifyGoogle: idtoken.Validate,
	}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)

	verr := newValidationError()
	if err := verr.merge(models.Validate(in)); err != nil {
		return nil, err
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hash),
		Provider: "local",
	}

	db, cancel := s.session(ctx)
	defer cancel()

	if err := db.Create(user).Error; err != nil {
		return nil, storeErr("create user", err)
	}
	return user, nil
}

// Login checks credentials and issues a token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*models.User, string, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	var user models.User
	err := db.Where("email = ?", normalizeEmail(in.Email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("login: %w", ErrUnauthenticated)
	}
	if err != nil {
		return nil, "", storeErr("load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, "", fmt.Errorf("login: %w", ErrUnauthenticated)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// GoogleLogin signs in with a Google ID token, creating the account on
// first use.
func (s *UserService) GoogleLogin(ctx context.Context, credential string) (*models.User, string, error) {
	if s.googleClient == "" {
		return nil, "", fmt.Errorf("google login is not configured: %w", ErrUnavailable)
	}

	payload, err := s.verifyGoogle(ctx, credential, s.googleClient)
	if err != nil {
		return nil, "", fmt.Errorf("verify google token: %w: %v", ErrUnauthenticated, err)
	}

	googleUser := googleUserFrom(payload)
	if googleUser.Email == "" || !googleUser.VerifiedEmail {
		return nil, "", fmt.Errorf("google email not verified: %w", ErrUnauthenticated)
	}

	db, cancel := s.session(ctx)
	defer cancel()

	var user models.User
	err = db.Where("email = ?", googleUser.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		created, err := createGoogleUser(db, googleUser)
		if err != nil {
			return nil, "", err
		}
		user = *created
	} else if err != nil {
		return nil, "", storeErr("load user", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

func googleUserFrom(payload *idtoken.Payload) GoogleUser {
	str := func(key string) string {
		v, _ := payload.Claims[key].(string)
		return v
	}
	verified, _ := payload.Claims["email_verified"].(bool)
	return GoogleUser{
		Name:          str("name"),
		Email:         normalizeEmail(str("email")),
		VerifiedEmail: verified,
		Picture:       str("picture"),
	}
}

// createGoogleUser stores a Google account with an unusable random password.
func createGoogleUser(db *gorm.DB, g GoogleUser) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	name := g.Name
	if name == "" {
		name = strings.SplitN(g.Email, "@", 2)[0]
	}

	user := &models.User{
		Name:     name,
		Email:    g.Email,
		Password: string(hash),
		Picture:  g.Picture,
		Provider: "google",
	}
	if err := db.Create(user).Error; err != nil {
		return nil, storeErr("create google user", err)
	}
	return user, nil
}

func (s *UserService) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

func (s *UserService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, storeErr("load user", err)
	}
	return &user, nil
}

func (s *UserService) Update(ctx context.Context, userID uint, in UserUpdate) (*models.User, error) {
	verr := newValidationError()
	if err := verr.merge(models.Validate(in)); err != nil {
		return nil, err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		verr.add("name", "is required")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if in.Name != nil {
		changes["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Picture != nil {
		changes["picture"] = *in.Picture
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		changes["password"] = string(hash)
	}

	db, cancel := s.session(ctx)
	defer cancel()

	if len(changes) > 0 {
		res := db.Model(&models.User{}).Where("id = ?", userID).Updates(changes)
		if res.Error != nil {
			return nil, storeErr("update user", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, fmt.Errorf("update user %d: %w", userID, ErrNotFound)
		}
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, storeErr("load user", err)
	}
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
