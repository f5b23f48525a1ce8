package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/utils"
	"gorm.io/gorm"
)

// User is identified by UID, the subject issued by the identity provider.
// Password is only set for admin console accounts.
type User struct {
	ID            int       `gorm:"primary_key" json:"id"`
	UID           string    `gorm:"size:128;not null;uniqueIndex" json:"uid"`
	Email         string    `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Name          string    `gorm:"size:100" json:"name"`
	Password      string    `gorm:"size:255" json:"password,omitempty"`
	IsAdmin       *bool     `gorm:"not null;default:false" json:"is_admin"`
	IsActive      *bool     `gorm:"not null;default:true" json:"is_active"`
	DefaultBaseId *string   `gorm:"size:64;index" json:"default_base_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewAdminUser struct {
	Email    string  `json:"email" binding:"required" validate:"required,email"`
	Name     string  `json:"name" binding:"required" validate:"required,max=100"`
	Password string  `json:"password" binding:"required" validate:"required,min=8"`
	Uid      string  `json:"uid"`
	BaseId   *string `json:"base_id"`
}

type LoginInfo struct {
	Token         string   `json:"token"`
	AccessToken   string   `json:"access_token"`
	UID           string   `json:"uid"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	IsAdmin       bool     `json:"is_admin"`
	DefaultBaseId *string  `json:"default_base_id"`
	BaseIds       []string `json:"base_ids"`
}

func (result *User) PrepareGive() {
	result.Password = ""
}

func (user User) Admin() bool {
	return user.IsAdmin != nil && *user.IsAdmin
}

func (user User) Active() bool {
	return user.IsActive == nil || *user.IsActive
}

// GetUserByUID reads through the User:<uid> cache. The password hash is kept in
// the cached copy; callers returning users to clients must PrepareGive.
func GetUserByUID(ctx context.Context, uid string) (*User, error) {
	var user User
	exists, err := config.GetRedisObject("User:"+uid, &user)
	if err != nil {
		return nil, err
	}
	if exists {
		return &user, nil
	}
	if err := config.GetDB().WithContext(ctx).Where("uid = ?", uid).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	if err := config.SetRedisObject("User:"+uid, &user, utils.TokenLifespan()); err != nil {
		return nil, err
	}
	return &user, nil
}

// EnsureUser returns the user for uid, creating a regular user on first sight.
func EnsureUser(ctx context.Context, uid string, email string, name string) (*User, error) {
	user, err := GetUserByUID(ctx, uid)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, utils.ErrorRecordNotFound) {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		email = uid
	}
	created := User{
		UID:      uid,
		Email:    email,
		Name:     name,
		IsAdmin:  utils.NewFalse(),
		IsActive: utils.NewTrue(),
	}
	if err := config.GetDB().WithContext(ctx).Create(&created).Error; err != nil {
		if utils.IsDuplicateKeyErr(err) {
			// lost a race with a concurrent first request
			return GetUserByUID(ctx, uid)
		}
		return nil, err
	}
	return &created, nil
}

// rehashPassword upgrades a stored hash to the configured cost. Failures only
// cost another rehash on the next login.
func rehashPassword(ctx context.Context, user *User, password string) {
	hashed, err := utils.HashPassword(password)
	if err == nil {
		err = config.GetDB().WithContext(ctx).Model(user).UpdateColumn("password", string(hashed)).Error
	}
	if err != nil {
		config.LogError(config.GetLogger(), "user.go", "rehashPassword", user.UID, nil, err)
	}
}

// Login checks admin console credentials and opens a session.
func Login(ctx context.Context, email string, password string) (*LoginInfo, error) {
	var user User
	email = strings.ToLower(strings.TrimSpace(email))
	if err := config.GetDB().WithContext(ctx).Where("email = ?", email).Take(&user).Error; err != nil {
		return nil, utils.Unauthorized("invalid email or password")
	}
	if user.Password == "" {
		return nil, utils.Unauthorized("invalid email or password")
	}
	if err := utils.ComparePassword(user.Password, password); err != nil {
		return nil, err
	}
	if !user.Active() {
		return nil, utils.Forbidden("user is disabled")
	}
	if utils.PasswordNeedsRehash(user.Password) {
		rehashPassword(ctx, &user, password)
	}

	token := uuid.NewString()
	lifespan := utils.TokenLifespan()
	if err := config.AddRedisSet("Tokens:"+user.UID, token); err != nil {
		return nil, err
	}
	if err := config.SetRedisValue("Token:"+token, user.UID, lifespan); err != nil {
		return nil, err
	}
	accessToken, err := utils.JwtGenerate(user.UID, user.Email, user.Admin())
	if err != nil {
		return nil, err
	}
	baseIds, err := accessibleBaseIds(ctx, user.UID)
	if err != nil {
		return nil, err
	}

	return &LoginInfo{
		Token:         token,
		AccessToken:   accessToken,
		UID:           user.UID,
		Name:          user.Name,
		Email:         user.Email,
		IsAdmin:       user.Admin(),
		DefaultBaseId: user.DefaultBaseId,
		BaseIds:       baseIds,
	}, nil
}

// ResolveSession returns the UID behind an admin console session token and
// slides its expiry forward.
func ResolveSession(ctx context.Context, token string) (string, bool, error) {
	key := "Token:" + token
	uid, exists, err := config.GetRedisValue(key)
	if err != nil || !exists || uid == "" {
		return "", false, err
	}
	if err := config.ExpireRedisKey(ctx, key, utils.TokenLifespan()); err != nil {
		return "", false, err
	}
	return uid, true, nil
}

// destroy current session
func Logout(ctx context.Context) (bool, error) {
	token, ok := utils.GetTokenFromContext(ctx)
	if !ok || token == "" {
		return false, utils.Unauthorized("token is required")
	}
	if err := config.RemoveRedisKey("Token:" + token); err != nil {
		return false, err
	}
	uid, ok := utils.GetUsernameFromContext(ctx)
	if !ok || uid == "" {
		return false, utils.Unauthorized("user not found")
	}
	if err := config.RemoveRedisSetMember("Tokens:"+uid, token); err != nil {
		return false, err
	}
	return true, nil
}

// DestroyUserSessions removes every session token of uid.
func DestroyUserSessions(uid string) error {
	tokens, err := config.GetRedisSetMembers("Tokens:" + uid)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(tokens)+1)
	for _, token := range tokens {
		keys = append(keys, "Token:"+token)
	}
	keys = append(keys, "Tokens:"+uid)
	return config.RemoveRedisKey(keys...)
}

// CreateAdminUser creates an admin, or promotes the user with the same email.
// When BaseId is given the admin also owns that base and it becomes the default.
func CreateAdminUser(ctx context.Context, input *NewAdminUser) (*User, error) {
	if !utils.IsAdmin(ctx) {
		return nil, utils.ErrorForbidden
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = strings.TrimSpace(input.Name)
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if input.BaseId != nil && *input.BaseId != "" {
		if _, err := fetchClientBase(ctx, *input.BaseId); err != nil {
			return nil, utils.NotFound("client base not found")
		}
	} else {
		input.BaseId = nil
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	var user User
	err = config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		findErr := tx.Where("email = ?", input.Email).First(&user).Error
		if findErr != nil && !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			uid := strings.TrimSpace(input.Uid)
			if uid == "" {
				uid = uuid.NewString()
			}
			user = User{
				UID:           uid,
				Email:         input.Email,
				Name:          input.Name,
				Password:      string(hashedPassword),
				IsAdmin:       utils.NewTrue(),
				IsActive:      utils.NewTrue(),
				DefaultBaseId: input.BaseId,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
		} else {
			updates := map[string]interface{}{
				"Name":     input.Name,
				"Password": string(hashedPassword),
				"IsAdmin":  true,
				"IsActive": true,
			}
			if input.BaseId != nil {
				updates["DefaultBaseId"] = input.BaseId
			}
			if err := tx.Model(&user).Updates(updates).Error; err != nil {
				return err
			}
		}

		if input.BaseId != nil {
			if err := grantBaseAccess(tx, *input.BaseId, user.UID, BaseAccessRoleOwner); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if utils.IsDuplicateKeyErr(err) {
			return nil, utils.Duplicate("duplicate uid or email")
		}
		return nil, err
	}

	if err := RemoveRedisBoth(user); err != nil {
		return nil, err
	}
	user.PrepareGive()
	return &user, nil
}

// ToggleUserAuthStatus flips is_active for uid and returns the new status.
// Disabling a user ends all of their sessions.
func ToggleUserAuthStatus(ctx context.Context, uid string) (bool, error) {
	if !utils.IsAdmin(ctx) {
		return false, utils.ErrorForbidden
	}
	if current, ok := utils.GetUsernameFromContext(ctx); ok && current == uid {
		return false, utils.Invalid("cannot change your own status")
	}

	var user User
	if err := config.GetDB().WithContext(ctx).Where("uid = ?", uid).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, utils.ErrorRecordNotFound
		}
		return false, err
	}

	isActive := !user.Active()
	if err := config.GetDB().WithContext(ctx).Model(&user).UpdateColumn("is_active", isActive).Error; err != nil {
		return false, err
	}
	user.IsActive = &isActive

	if !isActive {
		if err := DestroyUserSessions(uid); err != nil {
			return false, err
		}
	}
	if err := RemoveRedisBoth(user); err != nil {
		return false, err
	}
	return isActive, nil
}

// GetUsers lists users (admin only), optionally filtered by name or email.
func GetUsers(ctx context.Context, search *string) ([]*User, error) {
	if !utils.IsAdmin(ctx) {
		return nil, utils.ErrorForbidden
	}
	dbCtx := config.GetDB().WithContext(ctx)
	if search != nil && *search != "" {
		like := "%" + *search + "%"
		dbCtx = dbCtx.Where("name LIKE ? OR email LIKE ?", like, like)
	}
	var results []*User
	if err := dbCtx.Order("email").Find(&results).Error; err != nil {
		return nil, err
	}
	for _, u := range results {
		u.PrepareGive()
	}
	return results, nil
}

// GetCurrentUser returns the authenticated user without the password hash.
func GetCurrentUser(ctx context.Context) (*User, error) {
	uid, ok := utils.GetUsernameFromContext(ctx)
	if !ok || uid == "" {
		return nil, utils.ErrorUnauthorized
	}
	user, err := GetUserByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	user.PrepareGive()
	return user, nil
}
