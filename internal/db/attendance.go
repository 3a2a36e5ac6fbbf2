package db

// AttendanceRecord 表示一次签到/签退的完整考勤记录
// CheckinTime/CheckoutTime 以 "YYYY-MM-DD HH:MM:SS" 字符串存储，使用服务器本地时钟，不编码时区
// Latitude/Longitude 为遗留的通用坐标列，由启动时的回填逻辑与签到坐标保持一致
// CheckoutTime 为空即视为"未签退"的打开记录；签退字段要么全部写入要么全部为空
// 记录只在签退时被更新一次，系统不做删除
type AttendanceRecord struct {
	ID                uint     `gorm:"primaryKey" json:"id"`
	Username          string   `json:"username"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	Address           string   `json:"address"`
	CheckinTime       string   `json:"checkin_time"`
	CheckinRemark     string   `json:"checkin_remark"`
	CheckinLatitude   *float64 `json:"checkin_latitude"`
	CheckinLongitude  *float64 `json:"checkin_longitude"`
	CheckoutTime      *string  `json:"checkout_time"`
	CheckoutRemark    *string  `json:"checkout_remark"`
	CheckoutLatitude  *float64 `json:"checkout_latitude"`
	CheckoutLongitude *float64 `json:"checkout_longitude"`
}

// TableName 固定表名，与既有数据文件保持兼容
func (AttendanceRecord) TableName() string {
	return "attendance"
}

// Open 判断记录是否仍未签退
func (r AttendanceRecord) Open() bool {
	return r.CheckoutTime == nil
}
