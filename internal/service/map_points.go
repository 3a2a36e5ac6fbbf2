package service

import "github.com/geoattend/internal/db"

// MapPoint 是地图渲染所需的最小坐标对
type MapPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// CheckinPoints 从记录集中提取签到坐标完整的点位
func CheckinPoints(records []db.AttendanceRecord) []MapPoint {
	return collectPoints(records, func(r db.AttendanceRecord) (*float64, *float64) {
		return r.CheckinLatitude, r.CheckinLongitude
	})
}

// CheckoutPoints 从记录集中提取签退坐标完整的点位
func CheckoutPoints(records []db.AttendanceRecord) []MapPoint {
	return collectPoints(records, func(r db.AttendanceRecord) (*float64, *float64) {
		return r.CheckoutLatitude, r.CheckoutLongitude
	})
}

func collectPoints(records []db.AttendanceRecord, coords func(db.AttendanceRecord) (*float64, *float64)) []MapPoint {
	points := make([]MapPoint, 0, len(records))
	for _, record := range records {
		lat, lon := coords(record)
		if lat == nil || lon == nil {
			continue
		}
		points = append(points, MapPoint{Lat: *lat, Lon: *lon})
	}
	return points
}
