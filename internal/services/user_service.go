package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"agrihub/internal/models"
	"agrihub/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// passwordCost is lowered by tests.
var passwordCost = bcrypt.DefaultCost

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

const placeholderFarmDetail = "Needs Update"

type RegisterInput struct {
	Username  string `form:"username" json:"username" validate:"required,max=150"`
	Email     string `form:"email" json:"email" validate:"required,email,max=254"`
	Password1 string `form:"password1" json:"password1" validate:"required,min=8"`
	Password2 string `form:"password2" json:"password2" validate:"required,eqfield=Password1"`
	IsFarmer  bool   `form:"-" json:"is_farmer"`
}

// PasswordChangeInput is the change-password form of a logged in user.
type PasswordChangeInput struct {
	OldPassword  string `form:"old_password" json:"old_password" validate:"required"`
	NewPassword1 string `form:"new_password1" json:"new_password1" validate:"required,min=8"`
	NewPassword2 string `form:"new_password2" json:"new_password2" validate:"required,eqfield=NewPassword1"`
}

type FarmerProfileInput struct {
	FarmName     string `form:"farm_name" json:"farm_name" validate:"required,max=200"`
	FarmLocation string `form:"farm_location" json:"farm_location" validate:"max=200"`
	PhoneNumber  string `form:"phone_number" json:"phone_number" validate:"max=30"`
}

// Profile is the account page context.
type Profile struct {
	User          *models.User          `json:"user"`
	FarmerProfile *models.FarmerProfile `json:"farmer_profile,omitempty"`
	Roles         []string              `json:"roles"`
	Addresses     []models.Address      `json:"addresses"`
}

type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	ChangePassword(ctx context.Context, userID uint, input PasswordChangeInput) error
	Profile(ctx context.Context, userID uint) (*Profile, error)
	UpdateFarmerProfile(ctx context.Context, userID uint, input FarmerProfileInput) (*models.FarmerProfile, error)
}

type userService struct {
	tx          repository.Transactor
	userRepo    repository.UserRepository
	farmerRepo  repository.FarmerProfileRepository
	addressRepo repository.AddressRepository
	roles       RoleService
}

func NewUserService(
	tx repository.Transactor,
	userRepo repository.UserRepository,
	farmerRepo repository.FarmerProfileRepository,
	addressRepo repository.AddressRepository,
	roles RoleService,
) UserService {
	return &userService{
		tx:          tx,
		userRepo:    userRepo,
		farmerRepo:  farmerRepo,
		addressRepo: addressRepo,
		roles:       roles,
	}
}

// Register creates the account, its role membership and, for farmers, a placeholder farm profile.
// Either all of it is stored or none of it.
func (s *userService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	verr := validateStruct(input)
	if input.Username != "" && !usernamePattern.MatchString(input.Username) {
		verr.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	checkPassword(verr, "password2", input.Password1, input.Username)
	if input.Username != "" {
		taken, err := s.userRepo.ExistsByUsername(ctx, input.Username)
		if err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if taken {
			verr.Add("username", "A user with that username already exists.")
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password1), passwordCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		IsActive:     true,
	}

	var createErr error
	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		if createErr = s.userRepo.WithTx(tx).Create(ctx, user); createErr != nil {
			return fmt.Errorf("failed to create user: %w", createErr)
		}

		role := models.RoleConsumerBuyer
		if input.IsFarmer {
			role = models.RoleFarmerSeller
			profile := &models.FarmerProfile{
				UserID:       user.ID,
				FarmName:     fmt.Sprintf("%s's New Farm", user.Username),
				FarmLocation: placeholderFarmDetail,
				PhoneNumber:  placeholderFarmDetail,
			}
			if err := s.farmerRepo.WithTx(tx).Create(ctx, profile); err != nil {
				return fmt.Errorf("failed to create farmer profile: %w", err)
			}
			user.FarmerProfile = profile
		}

		if err := s.roles.WithTx(tx).AssignRole(ctx, user.ID, role); err != nil {
			return err
		}
		user.Groups = []models.Group{{Name: string(role)}}
		return nil
	})
	if createErr != nil && s.usernameTaken(ctx, createErr, input.Username) {
		verr.Add("username", "A user with that username already exists.")
		return nil, verr
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// usernameTaken reports whether a failed insert lost a race for the username.
// It runs after the transaction is closed.
func (s *userService) usernameTaken(ctx context.Context, createErr error, username string) bool {
	if errors.Is(createErr, gorm.ErrDuplicatedKey) {
		return true
	}
	taken, err := s.userRepo.ExistsByUsername(ctx, username)
	return err == nil && taken
}

// ChangePassword replaces the password after checking the current one.
// The new password follows the registration rules.
func (s *userService) ChangePassword(ctx context.Context, userID uint, input PasswordChangeInput) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return notFound(err, "user")
	}

	verr := validateStruct(input)
	if input.OldPassword != "" && bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)) != nil {
		verr.Add("old_password", "Your old password was entered incorrectly. Please enter it again.")
	}
	checkPassword(verr, "new_password2", input.NewPassword1, user.Username)
	if err := verr.OrNil(); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword1), passwordCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) Profile(ctx context.Context, userID uint) (*Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}

	addresses, err := s.addressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load addresses: %w", err)
	}
	if addresses == nil {
		addresses = []models.Address{}
	}

	roles := make([]string, 0, len(user.Groups))
	for _, g := range user.Groups {
		roles = append(roles, g.Name)
	}

	return &Profile{
		User:          user,
		FarmerProfile: user.FarmerProfile,
		Roles:         roles,
		Addresses:     addresses,
	}, nil
}

// UpdateFarmerProfile replaces the placeholder farm details. Consumers have no profile and get ErrNotFound.
func (s *userService) UpdateFarmerProfile(ctx context.Context, userID uint, input FarmerProfileInput) (*models.FarmerProfile, error) {
	input.FarmName = strings.TrimSpace(input.FarmName)
	if err := validateStruct(input).OrNil(); err != nil {
		return nil, err
	}

	profile, err := s.farmerRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "farmer profile")
	}

	profile.FarmName = input.FarmName
	profile.FarmLocation = strings.TrimSpace(input.FarmLocation)
	profile.PhoneNumber = strings.TrimSpace(input.PhoneNumber)
	if err := s.farmerRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update farmer profile: %w", err)
	}
	return profile, nil
}

// checkPassword applies the password rules shared by registration and password change.
func checkPassword(verr *ValidationError, field, password, username string) {
	if password == "" {
		return
	}
	if isNumeric(password) {
		verr.Add(field, "This password is entirely numeric.")
	}
	if strings.EqualFold(password, username) {
		verr.Add(field, "The password is too similar to the username.")
	}
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
