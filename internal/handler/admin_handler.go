package handler

import (
	"errors"
	"net/http"

	"github.com/geoattend/internal/db"
	"github.com/geoattend/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// sessionTokenKey 是 cookie 会话中保存管理员会话令牌的键
const sessionTokenKey = "admin_token"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login 校验管理员凭据并写入会话
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req, "请求格式不正确") {
		return
	}

	adminSession, err := a.auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "用户名或密码错误")
			return
		}
		respondError(c, http.StatusInternalServerError, "登录失败")
		return
	}

	session := sessions.Default(c)
	session.Set(sessionTokenKey, adminSession.Token)
	if err := session.Save(); err != nil {
		a.auth.Logout(adminSession.Token)
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "登录成功"})
}

// Logout 销毁管理员会话并清空 cookie
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	if token, ok := session.Get(sessionTokenKey).(string); ok {
		a.auth.Logout(token)
	}
	session.Clear()
	session.Save()

	c.JSON(http.StatusOK, gin.H{"message": "已退出登录"})
}

// AuthRequired 是校验管理员会话令牌的认证中间件
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		token, _ := session.Get(sessionTokenKey).(string)
		if !a.auth.Validate(token) {
			respondError(c, http.StatusUnauthorized, "请先登录")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Records 按用户与日期区间查询考勤记录
func (a *API) Records(c *gin.Context) {
	records, ok := a.searchRecords(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":   len(records),
		"records": records,
	})
}

// RecordsMap 返回当前过滤结果可用于地图渲染的坐标点
func (a *API) RecordsMap(c *gin.Context) {
	records, ok := a.searchRecords(c)
	if !ok {
		return
	}

	points, ok := phasePoints(c, records)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"points": points})
}

// ExportCSV 以 CSV 下载当前过滤结果，包含全部列
func (a *API) ExportCSV(c *gin.Context) {
	records, ok := a.searchRecords(c)
	if !ok {
		return
	}

	c.Header("Content-Disposition", `attachment; filename="attendance_export.csv"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	if err := a.exports.WriteCSV(c.Writer, records); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}

// Usernames 返回出现过的用户名列表，供过滤下拉使用
func (a *API) Usernames(c *gin.Context) {
	names, err := a.attendance.Usernames(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "查询用户列表失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"usernames": names})
}

func (a *API) searchRecords(c *gin.Context) ([]db.AttendanceRecord, bool) {
	filter := service.SearchFilter{
		Username: c.DefaultQuery("username", service.UsernameAll),
		DateFrom: c.Query("from"),
		DateTo:   c.Query("to"),
	}

	records, err := a.attendance.Search(c.Request.Context(), filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "查询记录失败")
		return nil, false
	}
	return records, true
}
