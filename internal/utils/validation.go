package utils

import (
	"errors"
	"regexp"
)

// 区域 ID 会出现在 URL 和 redis 的 key 中，只允许小写字母、数字、下划线和短横线
var zoneIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

func ValidateZoneID(zoneID string) error {
	if !zoneIDPattern.MatchString(zoneID) {
		return errors.New("区域ID无效")
	}
	return nil
}
