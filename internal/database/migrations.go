package database

import (
	"errors"
	"time"

	"github.com/MarcoPoloResearchLab/planner/internal/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const migrationNormalizeGroupMemberSets = "2026-08-20_normalize_group_member_sets"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationNormalizeGroupMemberSets, apply: normalizeGroupMemberSets},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := migration.apply(db); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

// normalizeGroupMemberSets repairs rows written before the member column
// carried a default, so every stored group decodes to a valid set.
func normalizeGroupMemberSets(db *gorm.DB) error {
	return db.Model(&store.Group{}).
		Where("members IS NULL OR members = ''").
		Update("members", "[]").Error
}
