package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geoattend/internal/db"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

// timestampLayout 是考勤时间戳的存储格式，使用服务器本地时钟
const timestampLayout = "2006-01-02 15:04:05"

// UsernameAll 是管理端查询中表示不过滤用户名的哨兵值
const UsernameAll = "All"

var (
	// ErrUsernameRequired 在用户名为空白时返回
	ErrUsernameRequired = errors.New("username is required")
	// ErrNoOpenRecord 在没有可签退的打开记录时返回
	ErrNoOpenRecord = errors.New("no open attendance record")
)

// AttendanceService 负责签到/签退与记录查询。
// 每次调用独立使用连接池中的连接，不跨调用持有事务；
// 存储层错误包装后原样向上传播，不做重试。
type AttendanceService struct {
	db        *gorm.DB
	locations LocationResolver
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

// SearchFilter 描述管理端查询条件。
// Username 为 UsernameAll 时不过滤用户；DateFrom/DateTo 为 "YYYY-MM-DD"，
// 对签到时间的日期前缀做闭区间比较。
type SearchFilter struct {
	Username string
	DateFrom string
	DateTo   string
}

// NewAttendanceService 构造 AttendanceService
func NewAttendanceService(gdb *gorm.DB, locations LocationResolver) *AttendanceService {
	return &AttendanceService{
		db:        gdb,
		locations: locations,
		sanitizer: bluemonday.StrictPolicy(),
		now:       time.Now,
	}
}

// SetClock 替换时间来源，主要用于测试
func (s *AttendanceService) SetClock(now func() time.Time) {
	if now == nil {
		s.now = time.Now
		return
	}
	s.now = now
}

// CheckIn 创建一条新的签到记录，签退字段全部留空。
// 定位失败不会阻止签到：坐标为空并以 Unknown 作为地址。
// 遗留的通用坐标列与签到坐标写入相同的值。
func (s *AttendanceService) CheckIn(ctx context.Context, username, remark string) (*db.AttendanceRecord, error) {
	name := s.cleanText(username)
	if name == "" {
		return nil, ErrUsernameRequired
	}

	location := s.locations.ResolveCurrent(ctx)

	record := db.AttendanceRecord{
		Username:         name,
		Latitude:         location.Latitude,
		Longitude:        location.Longitude,
		Address:          location.Address,
		CheckinTime:      s.now().Format(timestampLayout),
		CheckinRemark:    s.cleanText(remark),
		CheckinLatitude:  location.Latitude,
		CheckinLongitude: location.Longitude,
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("create attendance record: %w", err)
	}

	return &record, nil
}

// CheckOut 对该用户最近一条未签退的记录执行签退。
// 查找与更新合并为单条条件 UPDATE，目标是 id 最大的打开记录
// （同一用户存在多条打开记录属于数据异常，此时取最新一条）。
// 没有命中任何行时返回 ErrNoOpenRecord，不产生任何变更。
func (s *AttendanceService) CheckOut(ctx context.Context, username, remark string) (*db.AttendanceRecord, error) {
	name := s.cleanText(username)
	if name == "" {
		return nil, ErrUsernameRequired
	}

	location := s.locations.ResolveCurrent(ctx)
	checkoutTime := s.now().Format(timestampLayout)
	checkoutRemark := s.cleanText(remark)

	tx := s.db.WithContext(ctx)
	latestOpen := tx.Model(&db.AttendanceRecord{}).
		Select("id").
		Where("username = ? AND checkout_time IS NULL", name).
		Order("id DESC").
		Limit(1)

	result := tx.Model(&db.AttendanceRecord{}).
		Where("id = (?)", latestOpen).
		Updates(map[string]interface{}{
			"checkout_time":      checkoutTime,
			"checkout_remark":    checkoutRemark,
			"checkout_latitude":  location.Latitude,
			"checkout_longitude": location.Longitude,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("close attendance record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNoOpenRecord
	}

	var record db.AttendanceRecord
	if err := tx.Where("username = ? AND checkout_time = ?", name, checkoutTime).
		Order("id DESC").
		First(&record).Error; err != nil {
		return nil, fmt.Errorf("reload attendance record: %w", err)
	}

	return &record, nil
}

// History 返回某用户的全部考勤记录，按 id 倒序（最新在前），不按日期过滤
func (s *AttendanceService) History(ctx context.Context, username string) ([]db.AttendanceRecord, error) {
	name := strings.TrimSpace(username)
	if name == "" {
		return nil, ErrUsernameRequired
	}

	var records []db.AttendanceRecord
	if err := s.db.WithContext(ctx).
		Where("username = ?", name).
		Order("id DESC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list attendance history: %w", err)
	}

	return records, nil
}

// Search 按用户与签到日期区间过滤记录，最新在前。
// 日期比较沿用存储层的字符串前缀语义 substr(checkin_time, 1, 10)。
func (s *AttendanceService) Search(ctx context.Context, filter SearchFilter) ([]db.AttendanceRecord, error) {
	query := s.db.WithContext(ctx).Model(&db.AttendanceRecord{})

	username := strings.TrimSpace(filter.Username)
	if username != "" && username != UsernameAll {
		query = query.Where("username = ?", username)
	}
	if filter.DateFrom != "" {
		query = query.Where("substr(checkin_time, 1, 10) >= ?", filter.DateFrom)
	}
	if filter.DateTo != "" {
		query = query.Where("substr(checkin_time, 1, 10) <= ?", filter.DateTo)
	}

	var records []db.AttendanceRecord
	if err := query.Order("id DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("search attendance records: %w", err)
	}

	return records, nil
}

// Usernames 返回出现过的去重非空用户名，供管理端过滤下拉使用
func (s *AttendanceService) Usernames(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.db.WithContext(ctx).
		Model(&db.AttendanceRecord{}).
		Where("username <> ''").
		Distinct().
		Order("username ASC").
		Pluck("username", &names).Error; err != nil {
		return nil, fmt.Errorf("list usernames: %w", err)
	}

	return names, nil
}

// cleanText 去除首尾空白并剥离用户输入中的 HTML 标签
func (s *AttendanceService) cleanText(text string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(strings.TrimSpace(text)))
}
