package repository

import (
	"path/filepath"
	"testing"

	"genom-go/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB 在临时目录中打开一个纯 Go 的 SQLite 数据库并迁移全部模型。
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "genom.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Order{}, &model.Family{}, &model.Genus{}, &model.Kind{}, &model.Specimen{}, &model.AuditLog{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func strPtr(s string) *string { return &s }
func uintPtr(u uint) *uint    { return &u }

// seedTree 写入 Carnivora/Felidae/Felis/catus 与 Canidae/Canis 两条分支，以及一条无名 order。
func seedTree(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&model.Order{ID: 1, Name: strPtr("Carnivora")}).Error)
	require.NoError(t, db.Create(&model.Order{ID: 7, Name: strPtr("Primates")}).Error)
	require.NoError(t, db.Create(&model.Order{ID: 9}).Error)
	require.NoError(t, db.Create(&model.Family{ID: 2, Name: strPtr("Felidae"), OrderID: uintPtr(1)}).Error)
	require.NoError(t, db.Create(&model.Family{ID: 5, Name: strPtr("Canidae"), OrderID: uintPtr(1)}).Error)
	require.NoError(t, db.Create(&model.Genus{ID: 3, Name: strPtr("Felis"), FamilyID: uintPtr(2)}).Error)
	require.NoError(t, db.Create(&model.Genus{ID: 6, Name: strPtr("Canis"), FamilyID: uintPtr(5)}).Error)
	require.NoError(t, db.Create(&model.Kind{ID: 4, Name: strPtr("catus"), GenusID: uintPtr(3)}).Error)
	require.NoError(t, db.Create(&model.Specimen{
		ID:       42,
		OrderID:  uintPtr(1),
		FamilyID: uintPtr(2),
		GenusID:  uintPtr(3),
		KindID:   uintPtr(4),
	}).Error)
}
