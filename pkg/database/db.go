package database

import (
	"fmt"
	"sync"

	"anoa.com/survivehub/pkg/slug"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Config struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	Debug    bool
}

func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.Host, c.User, c.Password, c.Name, c.Port,
	)
}

var (
	db   *gorm.DB
	once sync.Once
)

// Connect opens the postgres pool once per process.
func Connect(cfg Config) (*gorm.DB, error) {
	var err error
	once.Do(func() {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), GormConfig(cfg.Debug))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return db, nil
}

// GormConfig is shared by the postgres pool and the sqlite test databases.
func GormConfig(debug bool) *gorm.Config {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	// Cascades run in the services, and comments outlive their deleted authors,
	// so the schema carries no foreign key constraints.
	return &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(level),
	}
}

// CountSlugs counts rows of model whose slug is base or a numbered variant of it.
func CountSlugs(db *gorm.DB, model interface{}, base string) (int64, error) {
	var n int64
	err := db.Model(model).Where("slug = ? OR slug LIKE ?", base, slug.Pattern(base)).Count(&n).Error
	return n, err
}
