package db

import (
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
)

// schemaMigration 记录一条已应用的迁移版本
type schemaMigration struct {
	Version   int `gorm:"primaryKey"`
	AppliedAt time.Time
}

func (schemaMigration) TableName() string {
	return "schema_migrations"
}

// migration 描述一次结构变更；新的变更只能追加到列表末尾
type migration struct {
	version int
	name    string
	run     func(tx *gorm.DB) error
}

// extendedColumns 为扩展版本补充的列集合，类型使用 SQLite 的声明写法
var extendedColumns = map[string]string{
	"latitude":           "REAL",
	"longitude":          "REAL",
	"checkin_remark":     "TEXT",
	"checkout_remark":    "TEXT",
	"checkin_latitude":   "REAL",
	"checkin_longitude":  "REAL",
	"checkout_latitude":  "REAL",
	"checkout_longitude": "REAL",
}

var migrations = []migration{
	{version: 1, name: "create_attendance_table", run: ensureBaseTable},
	{version: 2, name: "add_location_and_remark_columns", run: func(tx *gorm.DB) error {
		return ensureColumns(tx, extendedColumns)
	}},
}

// Migrate 按版本升序应用未执行过的迁移，已应用的版本记录在 schema_migrations 表；
// 随后执行每次启动都会运行的遗留坐标回填。
// 单条迁移本身保持幂等，migrations 表丢失后重放也不会出错。
// 存储层错误直接向上传播，由调用方决定是否终止进程。
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(&schemaMigration{}); err != nil {
		return fmt.Errorf("prepare schema_migrations: %w", err)
	}

	for _, m := range migrations {
		var applied int64
		if err := gdb.Model(&schemaMigration{}).
			Where("version = ?", m.version).
			Count(&applied).Error; err != nil {
			return fmt.Errorf("inspect migration %d: %w", m.version, err)
		}
		if applied > 0 {
			continue
		}

		if err := m.run(gdb); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.version, m.name, err)
		}

		if err := gdb.Create(&schemaMigration{Version: m.version, AppliedAt: time.Now()}).Error; err != nil {
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
	}

	return backfillLegacyLocation(gdb)
}

// ensureBaseTable 按最初的列集合建表；表已存在时不做任何事
func ensureBaseTable(tx *gorm.DB) error {
	return tx.Exec(`CREATE TABLE IF NOT EXISTS attendance (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT,
		address TEXT,
		checkin_time TEXT,
		checkout_time TEXT
	)`).Error
}

// ensureColumns 为缺失的列补齐定义，默认值为 NULL。
// 先检查列是否存在，重复执行不会出错；按列名排序保证添加顺序确定。
func ensureColumns(tx *gorm.DB, expected map[string]string) error {
	names := make([]string, 0, len(expected))
	for name := range expected {
		names = append(names, name)
	}
	sort.Strings(names)

	migrator := tx.Migrator()
	for _, name := range names {
		if migrator.HasColumn(&AttendanceRecord{}, name) {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE attendance ADD COLUMN %s %s", name, expected[name])
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("add column %s: %w", name, err)
		}
	}
	return nil
}

// backfillLegacyLocation 将签到坐标回填到遗留的通用坐标列。
// 对已回填的数据是空操作，重复运行结果不变。
func backfillLegacyLocation(gdb *gorm.DB) error {
	err := gdb.Exec(`UPDATE attendance
		SET latitude = checkin_latitude,
		    longitude = checkin_longitude
		WHERE (latitude IS NULL OR longitude IS NULL)
		  AND checkin_latitude IS NOT NULL
		  AND checkin_longitude IS NOT NULL`).Error
	if err != nil {
		return fmt.Errorf("backfill legacy location: %w", err)
	}
	return nil
}
