package hertzx

import (
	"fmt"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hatcher/voyage/models"
	"github.com/pkg/errors"
	"strconv"
)

// ParamInt64 获取参数
func ParamInt64(c *app.RequestContext, paramName string) (int64, error) {
	paramContent := c.Param(paramName)
	if paramContent == "" {
		return 0, fmt.Errorf("参数 %s 不能为空", paramName)
	}
	return strconv.ParseInt(paramContent, 10, 64)
}

// QueryInt64 获取int64参数
func QueryInt64(c *app.RequestContext, paramName string) (int64, error) {
	pv := c.DefaultQuery(paramName, "")
	var v int64
	if pv == "" {
		return v, nil
	}
	return strconv.ParseInt(pv, 10, 64)
}

// QueryInt 获取int参数
func QueryInt(c *app.RequestContext, paramName string) (int, error) {
	pv := c.DefaultQuery(paramName, "")
	var v int
	if pv == "" {
		return v, nil
	}
	return strconv.Atoi(pv)
}

// ParsePageable 解析分页参数
func ParsePageable(c *app.RequestContext) (models.Pageable, error) {
	pageNo, err := QueryInt(c, "pageNo")
	pageable := models.Pageable{}
	if err != nil {
		return pageable, errors.WithMessagef(err, "参数 pageNo 不合法")
	}
	pageSize, err := QueryInt(c, "pageSize")
	if err != nil {
		return pageable, errors.WithMessagef(err, "参数 pageSize 不合法")
	}
	sortField := c.DefaultQuery("sortField", "updated_at")
	if sortField == "" {
		sortField = "updated_at"
	}
	sortOrder := c.DefaultQuery("sortOrder", "desc")
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}
	return models.PageRequest(pageNo, pageSize, sortField, sortOrder), nil
}
