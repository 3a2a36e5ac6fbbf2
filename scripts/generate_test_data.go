package main

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/geoattend/internal/config"
	"github.com/geoattend/internal/db"
)

// 测试数据生成器：为本地调试填充一批考勤记录
func main() {
	cfg := config.Load()
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成测试数据...")

	createAttendanceRecords()

	fmt.Println("测试数据生成完成！")
	fmt.Printf("管理员: %s (密码: %s)\n", cfg.AdminUsername, cfg.AdminPassword)
}

// 为几位示例用户生成最近两周的签到/签退记录
func createAttendanceRecords() {
	var count int64
	db.DB.Model(&db.AttendanceRecord{}).Count(&count)
	if count > 0 {
		fmt.Println("考勤记录已存在，跳过创建")
		return
	}

	users := []string{"alice", "bob", "carol"}
	places := []struct {
		lat, lon float64
		address  string
	}{
		{12.9716, 77.5946, "Bengaluru, Karnataka, India"},
		{28.6139, 77.2090, "New Delhi, Delhi, India"},
		{19.0760, 72.8777, "Mumbai, Maharashtra, India"},
	}

	for day := 14; day >= 1; day-- {
		date := time.Now().AddDate(0, 0, -day)
		for _, user := range users {
			// 周末不打卡
			if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
				continue
			}

			place := places[rand.Intn(len(places))]
			lat := place.lat
			lon := place.lon

			checkin := time.Date(date.Year(), date.Month(), date.Day(), 9, rand.Intn(30), rand.Intn(60), 0, time.Local)
			checkoutTime := checkin.Add(time.Duration(8)*time.Hour + time.Duration(rand.Intn(90))*time.Minute).
				Format("2006-01-02 15:04:05")
			checkoutRemark := "下班"

			record := db.AttendanceRecord{
				Username:          user,
				Latitude:          &lat,
				Longitude:         &lon,
				Address:           place.address,
				CheckinTime:       checkin.Format("2006-01-02 15:04:05"),
				CheckinRemark:     "上班打卡",
				CheckinLatitude:   &lat,
				CheckinLongitude:  &lon,
				CheckoutTime:      &checkoutTime,
				CheckoutRemark:    &checkoutRemark,
				CheckoutLatitude:  &lat,
				CheckoutLongitude: &lon,
			}
			if err := db.DB.Create(&record).Error; err != nil {
				log.Fatal("创建考勤记录失败:", err)
			}
		}
	}

	// 留一条今天未签退的记录，方便调试签退流程
	lat := places[0].lat
	lon := places[0].lon
	open := db.AttendanceRecord{
		Username:         "alice",
		Latitude:         &lat,
		Longitude:        &lon,
		Address:          places[0].address,
		CheckinTime:      time.Now().Format("2006-01-02 15:04:05"),
		CheckinRemark:    "上班打卡",
		CheckinLatitude:  &lat,
		CheckinLongitude: &lon,
	}
	if err := db.DB.Create(&open).Error; err != nil {
		log.Fatal("创建打开记录失败:", err)
	}

	fmt.Println("考勤记录: 3 位用户最近两周的打卡数据")
}
