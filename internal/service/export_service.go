package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/geoattend/internal/db"
)

// exportHeader 覆盖全部存储列，包含遗留坐标与签到/签退坐标
var exportHeader = []string{
	"id", "username", "latitude", "longitude", "address",
	"checkin_time", "checkin_remark", "checkin_latitude", "checkin_longitude",
	"checkout_time", "checkout_remark", "checkout_latitude", "checkout_longitude",
}

// ExportService 将过滤后的记录集导出为 CSV
type ExportService struct{}

// NewExportService 构造 ExportService
func NewExportService() *ExportService {
	return &ExportService{}
}

// WriteCSV 输出带表头的 UTF-8 CSV，一条记录一行，顺序与传入一致。
// 空坐标与未签退字段输出为空串。
func (s *ExportService) WriteCSV(w io.Writer, records []db.AttendanceRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, record := range records {
		row := []string{
			strconv.FormatUint(uint64(record.ID), 10),
			record.Username,
			formatCoord(record.Latitude),
			formatCoord(record.Longitude),
			record.Address,
			record.CheckinTime,
			record.CheckinRemark,
			formatCoord(record.CheckinLatitude),
			formatCoord(record.CheckinLongitude),
			stringOrEmpty(record.CheckoutTime),
			stringOrEmpty(record.CheckoutRemark),
			formatCoord(record.CheckoutLatitude),
			formatCoord(record.CheckoutLongitude),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func stringOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
