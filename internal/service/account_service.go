package service

import (
	"errors"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/repository"
	"go-marketplace-api/pkg/jwt"
	"go-marketplace-api/pkg/storage"
	"go-marketplace-api/pkg/validator"
)

type AccountService interface {
	Register(req *RegisterRequest, avatar *multipart.FileHeader) (*model.User, error)
	Login(username, password string) (*LoginResponse, error)
	GetPublicProfile(username string) (*model.PublicProfileResponse, error)
	GetProfile(userID uuid.UUID) (*model.ProfileResponse, error)
	UpdateProfile(userID uuid.UUID, req *UpdateProfileRequest, avatar *multipart.FileHeader) (*model.ProfileResponse, error)
}

// RegisterRequest represents the registration payload (JSON or multipart)
type RegisterRequest struct {
	Username      string `json:"username" form:"username" validate:"required"`
	Email         string `json:"email" form:"email" validate:"required,email"`
	Password      string `json:"password" form:"password" validate:"required"`
	PasswordAgain string `json:"password_again" form:"password_again"`
	FirstName     string `json:"first_name" form:"first_name" validate:"required"`
	LastName      string `json:"last_name" form:"last_name" validate:"required"`
	Bio           string `json:"bio" form:"bio" validate:"max=500"`
	Location      string `json:"location" form:"location" validate:"max=100"`
}

// UpdateProfileRequest carries the self-editable profile fields. The
// read-only fields (id, username, email) have no counterpart here, so
// they are dropped from any payload without error.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" form:"first_name"`
	LastName  *string `json:"last_name" form:"last_name"`
	Bio       *string `json:"bio" form:"bio"`
	Location  *string `json:"location" form:"location"`
}

type LoginResponse struct {
	Token string                `json:"token"`
	User  model.ProfileResponse `json:"user"`
}

type accountService struct {
	userRepo repository.UserRepository
	store    *storage.Storage
	log      *logrus.Logger
}

func NewAccountService(userRepo repository.UserRepository, store *storage.Storage, log *logrus.Logger) AccountService {
	return &accountService{
		userRepo: userRepo,
		store:    store,
		log:      log,
	}
}

func (s *accountService) Register(req *RegisterRequest, avatar *multipart.FileHeader) (*model.User, error) {
	// 1. Struct validation
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, &ValidationError{Fields: validator.Fields(errs)}
	}

	// 2. Password confirmation
	if req.Password != req.PasswordAgain {
		return nil, NewValidationError("password", "passwords do not match")
	}

	user := &model.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Location:  req.Location,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}

	// 3. Insert. The unique constraints on username/email are the source
	// of truth; the lookups below only decide which field to blame.
	if err := s.userRepo.Create(user); err != nil {
		if _, uerr := s.userRepo.FindByUsername(req.Username); uerr == nil {
			return nil, NewValidationError("username", "this username is already taken")
		}
		if _, eerr := s.userRepo.FindByEmail(req.Email); eerr == nil {
			return nil, NewValidationError("email", "this email is already registered")
		}
		return nil, err
	}

	// 4. Optional avatar. The account exists either way; a failed write
	// only costs the picture.
	if avatar != nil {
		path, err := s.store.SaveProfileImage(user.ID, avatar)
		if err != nil {
			s.log.WithError(err).WithField("user_id", user.ID).Warn("profile image not stored, continuing without it")
			return user, nil
		}
		user.ProfileImage = path
		if err := s.userRepo.Update(user); err != nil {
			return nil, err
		}
	}

	return user, nil
}

func (s *accountService) Login(username, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	token, err := jwt.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &LoginResponse{
		Token: token,
		User:  user.ToProfile(),
	}, nil
}

func (s *accountService) GetPublicProfile(username string) (*model.PublicProfileResponse, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	profile := user.ToPublicProfile()
	return &profile, nil
}

func (s *accountService) GetProfile(userID uuid.UUID) (*model.ProfileResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	profile := user.ToProfile()
	return &profile, nil
}

func (s *accountService) UpdateProfile(userID uuid.UUID, req *UpdateProfileRequest, avatar *multipart.FileHeader) (*model.ProfileResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Location != nil {
		user.Location = *req.Location
	}

	if avatar != nil {
		path, err := s.store.SaveProfileImage(user.ID, avatar)
		if err != nil {
			return nil, err
		}
		if user.ProfileImage != "" {
			if err := s.store.Remove(user.ProfileImage); err != nil {
				s.log.WithError(err).WithField("path", user.ProfileImage).Warn("could not remove previous profile image")
			}
		}
		user.ProfileImage = path
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	profile := user.ToProfile()
	return &profile, nil
}
