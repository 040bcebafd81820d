package util

import (
	"encoding/json"
	"github.com/hatcher/voyage/pkg/logs"
)

// ToJsonIgnoreError 对象转换为json，忽略错误
func ToJsonIgnoreError(o interface{}) string {
	if o == nil {
		logs.Errorf("[ToJsonIgnoreError]对象为nil")
		return ""
	}
	data, err := json.Marshal(o)
	if err != nil {
		logs.Errorf("[ToJsonIgnoreError]对象转换为json失败：%s", err.Error())
		return ""
	}
	return string(data)
}
