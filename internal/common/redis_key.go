package common

import (
	"fmt"
	"strings"
)

func RedisKeyAddressByFID(fid int64) string {
	return fmt.Sprintf("address:fid:%d", fid)
}

func RedisKeyAddressByUsername(username string) string {
	return fmt.Sprintf("address:username:%s", strings.ToLower(username))
}
