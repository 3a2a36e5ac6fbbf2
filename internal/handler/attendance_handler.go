package handler

import (
	"errors"
	"net/http"

	"github.com/geoattend/internal/db"
	"github.com/geoattend/internal/service"
	"github.com/gin-gonic/gin"
)

type attendanceRequest struct {
	Username string `json:"username"`
	Remark   string `json:"remark"`
}

// CheckIn 处理签到请求
func (a *API) CheckIn(c *gin.Context) {
	var req attendanceRequest
	if !bindJSON(c, &req, "请求格式不正确") {
		return
	}

	record, err := a.attendance.CheckIn(c.Request.Context(), req.Username, req.Remark)
	if err != nil {
		if errors.Is(err, service.ErrUsernameRequired) {
			respondError(c, http.StatusBadRequest, "请输入用户名")
			return
		}
		respondError(c, http.StatusInternalServerError, "签到失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "签到成功",
		"record":  record,
	})
}

// CheckOut 处理签退请求
func (a *API) CheckOut(c *gin.Context) {
	var req attendanceRequest
	if !bindJSON(c, &req, "请求格式不正确") {
		return
	}

	record, err := a.attendance.CheckOut(c.Request.Context(), req.Username, req.Remark)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameRequired):
			respondError(c, http.StatusBadRequest, "请输入用户名")
		case errors.Is(err, service.ErrNoOpenRecord):
			respondError(c, http.StatusNotFound, "没有找到未签退的记录")
		default:
			respondError(c, http.StatusInternalServerError, "签退失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "签退成功",
		"record":  record,
	})
}

// History 返回指定用户的全部考勤记录，最新在前
func (a *API) History(c *gin.Context) {
	records, ok := a.historyRecords(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":   len(records),
		"records": records,
	})
}

// HistoryMap 返回指定用户可用于地图渲染的坐标点。
// phase 取 checkin 或 checkout，分别对应签到/签退坐标对。
func (a *API) HistoryMap(c *gin.Context) {
	records, ok := a.historyRecords(c)
	if !ok {
		return
	}

	points, ok := phasePoints(c, records)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"points": points})
}

func (a *API) historyRecords(c *gin.Context) ([]db.AttendanceRecord, bool) {
	records, err := a.attendance.History(c.Request.Context(), c.Query("username"))
	if err != nil {
		if errors.Is(err, service.ErrUsernameRequired) {
			respondError(c, http.StatusBadRequest, "请输入用户名")
			return nil, false
		}
		respondError(c, http.StatusInternalServerError, "查询记录失败")
		return nil, false
	}
	return records, true
}

func phasePoints(c *gin.Context, records []db.AttendanceRecord) ([]service.MapPoint, bool) {
	switch c.DefaultQuery("phase", "checkin") {
	case "checkin":
		return service.CheckinPoints(records), true
	case "checkout":
		return service.CheckoutPoints(records), true
	default:
		respondError(c, http.StatusBadRequest, "phase 仅支持 checkin 或 checkout")
		return nil, false
	}
}
