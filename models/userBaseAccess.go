package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserBaseAccess authorizes a UID on a client base.
type UserBaseAccess struct {
	ID        int            `gorm:"primary_key" json:"id"`
	BaseId    string         `gorm:"size:64;not null;uniqueIndex:uniq_base_uid,priority:1" json:"base_id"`
	Uid       string         `gorm:"size:128;not null;uniqueIndex:uniq_base_uid,priority:2;index" json:"uid"`
	Role      BaseAccessRole `gorm:"size:10;not null;default:'member'" json:"role"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// access rows are read across bases for the caller's own uid
func accessContext(ctx context.Context) context.Context {
	return utils.SetSkipTenantScopeInContext(ctx, true)
}

func grantBaseAccess(tx *gorm.DB, baseId string, uid string, role BaseAccessRole) error {
	access := UserBaseAccess{BaseId: baseId, Uid: uid, Role: role}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&access).Error; err != nil {
		return err
	}
	return config.RemoveRedisKey("UserBaseAccessList:" + uid)
}

// accessibleBaseIds is the user's default base plus every base with an access row.
func accessibleBaseIds(ctx context.Context, uid string) ([]string, error) {
	var ids []string
	exists, err := config.GetRedisObject("UserBaseAccessList:"+uid, &ids)
	if err != nil {
		return nil, err
	}
	if exists {
		return ids, nil
	}

	db := config.GetDB().WithContext(accessContext(ctx))
	if err := db.Model(&UserBaseAccess{}).Where("uid = ?", uid).Order("base_id").Pluck("base_id", &ids).Error; err != nil {
		return nil, err
	}
	var user User
	err = db.Where("uid = ?", uid).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if user.DefaultBaseId != nil && *user.DefaultBaseId != "" {
		ids = append([]string{*user.DefaultBaseId}, ids...)
	}
	ids = utils.UniqueSlice(ids)

	if err := config.SetRedisObject("UserBaseAccessList:"+uid, ids, utils.GetCacheLifespan()); err != nil {
		return nil, err
	}
	return ids, nil
}

// CanAccessBase applies the access rule: admin, default base, or an access row.
func CanAccessBase(ctx context.Context, user *User, baseId string) (bool, error) {
	if user == nil || baseId == "" {
		return false, nil
	}
	if user.Admin() {
		return true, nil
	}
	if user.DefaultBaseId != nil && *user.DefaultBaseId == baseId {
		return true, nil
	}
	ids, err := accessibleBaseIds(ctx, user.UID)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == baseId {
			return true, nil
		}
	}
	return false, nil
}

type NewAuthorizedUid struct {
	Uid  string         `json:"uid" binding:"required"`
	Role BaseAccessRole `json:"role"`
}

// AddAuthorizedUid grants uid access to baseId (admin only). Re-adding is a no-op.
func AddAuthorizedUid(ctx context.Context, baseId string, input *NewAuthorizedUid) (*UserBaseAccess, error) {
	if !utils.IsAdmin(ctx) {
		return nil, utils.ErrorForbidden
	}
	input.Uid = strings.TrimSpace(input.Uid)
	if input.Uid == "" {
		return nil, utils.Invalid("uid is required")
	}
	if input.Role == "" {
		input.Role = BaseAccessRoleMember
	}
	if !input.Role.IsValid() {
		return nil, utils.Invalid("invalid role")
	}
	if _, err := fetchClientBase(ctx, baseId); err != nil {
		return nil, err
	}

	db := config.GetDB().WithContext(accessContext(ctx))
	if err := grantBaseAccess(db, baseId, input.Uid, input.Role); err != nil {
		return nil, err
	}
	var access UserBaseAccess
	if err := db.Where("base_id = ? AND uid = ?", baseId, input.Uid).First(&access).Error; err != nil {
		return nil, err
	}
	return &access, nil
}

// RemoveAuthorizedUid revokes access and ends the user's sessions so the
// change applies immediately.
func RemoveAuthorizedUid(ctx context.Context, baseId string, uid string) (bool, error) {
	if !utils.IsAdmin(ctx) {
		return false, utils.ErrorForbidden
	}
	res := config.GetDB().WithContext(accessContext(ctx)).
		Where("base_id = ? AND uid = ?", baseId, uid).
		Delete(&UserBaseAccess{})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, utils.ErrorRecordNotFound
	}
	if err := config.RemoveRedisKey("UserBaseAccessList:"+uid, "User:"+uid); err != nil {
		return false, err
	}
	if err := DestroyUserSessions(uid); err != nil {
		return false, err
	}
	return true, nil
}

func ListAuthorizedUids(ctx context.Context, baseId string) ([]*UserBaseAccess, error) {
	if !utils.IsAdmin(ctx) {
		return nil, utils.ErrorForbidden
	}
	var results []*UserBaseAccess
	err := config.GetDB().WithContext(accessContext(ctx)).
		Where("base_id = ?", baseId).
		Order("created_at").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// SetDefaultBase sets the caller's default base among the bases they can access.
func SetDefaultBase(ctx context.Context, baseId string) (*User, error) {
	uid, ok := utils.GetUsernameFromContext(ctx)
	if !ok || uid == "" {
		return nil, utils.ErrorUnauthorized
	}
	user, err := GetUserByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	allowed, err := CanAccessBase(ctx, user, baseId)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, utils.ErrorForbidden
	}
	if err := config.GetDB().WithContext(ctx).Model(&User{}).Where("uid = ?", uid).
		UpdateColumn("default_base_id", baseId).Error; err != nil {
		return nil, err
	}
	if err := RemoveRedisBoth(*user); err != nil {
		return nil, err
	}
	user.DefaultBaseId = &baseId
	user.PrepareGive()
	return user, nil
}
