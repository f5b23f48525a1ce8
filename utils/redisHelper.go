package utils

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"

	"github.com/mmdatafocus/finance_backend/config"
)

func GetCacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN"))
	if err != nil {
		lifespan = 1
	}
	return time.Duration(lifespan) * time.Hour
}

/* generic functions */

func GetTypeName[T any]() string {
	var v T
	return reflect.TypeOf(v).Name()
}

/* Redis */

// StoreRedis caches a single instance as Type:id. obj should be a pointer.
func StoreRedis[T any](obj any, id int) error {
	key := GetTypeName[T]() + ":" + fmt.Sprint(id)
	return config.SetRedisObject(key, obj, GetCacheLifespan())
}

func listKey[T any](baseId string) string {
	if baseId == "" {
		return GetTypeName[T]() + "List"
	}
	return GetTypeName[T]() + "List:" + baseId
}

// StoreRedisList caches TypeList:$base_id.
func StoreRedisList[T any](obj any, baseId string) error {
	return config.SetRedisObject(listKey[T](baseId), obj, GetCacheLifespan())
}

// RetrieveRedis returns nil if the key does not exist.
func RetrieveRedis[T any](id int) (*T, error) {
	var result *T
	key := GetTypeName[T]() + ":" + fmt.Sprint(id)
	exists, err := config.GetRedisObject(key, &result)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return result, nil
}

// RetrieveRedisList returns nil if the list is not cached. baseId can be empty.
func RetrieveRedisList[T any](baseId string) ([]*T, error) {
	var result []*T
	exists, err := config.GetRedisObject(listKey[T](baseId), &result)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return result, nil
}

// RemoveRedisList clears TypeList:$base_id.
func RemoveRedisList[T any](baseId string) error {
	return config.RemoveRedisKey(listKey[T](baseId))
}

// RemoveRedisItem clears Type:$id.
func RemoveRedisItem[T any](id int) error {
	return config.RemoveRedisKey(GetTypeName[T]() + ":" + fmt.Sprint(id))
}
