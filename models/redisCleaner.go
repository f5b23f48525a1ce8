package models

import (
	"time"

	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/utils"
)

// timeNow is swapped in tests.
var timeNow = func() time.Time { return time.Now().UTC() }

type RedisCleaner interface {
	RemoveInstanceRedis() error // remove one
	RemoveAllRedis() error      // remove list if exists
}

// remove both item & list
func RemoveRedisBoth[T RedisCleaner](obj T) error {
	if err := obj.RemoveInstanceRedis(); err != nil {
		return err
	}
	return obj.RemoveAllRedis()
}

func (obj Store) RemoveInstanceRedis() error {
	return utils.RemoveRedisItem[Store](obj.ID)
}

func (obj Store) RemoveAllRedis() error {
	return utils.RemoveRedisList[AllStore](obj.BaseId)
}

func (obj Category) RemoveInstanceRedis() error {
	return utils.RemoveRedisItem[Category](obj.ID)
}

func (obj Category) RemoveAllRedis() error {
	return utils.RemoveRedisList[AllCategory](obj.BaseId)
}

func (obj PaymentMethod) RemoveInstanceRedis() error {
	return utils.RemoveRedisItem[PaymentMethod](obj.ID)
}

func (obj PaymentMethod) RemoveAllRedis() error {
	return utils.RemoveRedisList[AllPaymentMethod](obj.BaseId)
}

func (obj MovementType) RemoveInstanceRedis() error {
	return utils.RemoveRedisItem[MovementType](obj.ID)
}

func (obj MovementType) RemoveAllRedis() error {
	return utils.RemoveRedisList[AllMovementType](obj.BaseId)
}

func (obj ClienteFornecedor) RemoveInstanceRedis() error {
	return utils.RemoveRedisItem[ClienteFornecedor](obj.ID)
}

func (obj ClienteFornecedor) RemoveAllRedis() error {
	return utils.RemoveRedisList[AllClienteFornecedor](obj.BaseId)
}

/*
caches:
	User:$uid
	UserBaseAccessList:$uid
*/

func (user User) RemoveInstanceRedis() error {
	return config.RemoveRedisKey("User:" + user.UID)
}

func (user User) RemoveAllRedis() error {
	return config.RemoveRedisKey("UserBaseAccessList:" + user.UID)
}
