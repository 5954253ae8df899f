package bootstrap

import (
	"errors"

	"anoa.com/survivehub/internal/entity"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Follow{},
		&entity.AccountInvite{},
		&entity.Post{},
		&entity.Course{},
		&entity.Module{},
		&entity.DeadseaUpdate{},
		&entity.Comment{},
		&entity.Reply{},
		&entity.ContentLike{},
		&entity.ContentReport{},
		&entity.Notification{},
		&entity.Group{},
		&entity.GroupMember{},
		&entity.Discussion{},
		&entity.Response{},
		&entity.Sponsor{},
		&entity.SponsorDeal{},
	)
}

type AdminSeed struct {
	Email    string
	Username string
	Password string
}

// SeedAdminUser creates the development administrator when no account uses its email.
func SeedAdminUser(db *gorm.DB, seed AdminSeed, log *zap.SugaredLogger) error {
	var existing entity.User
	err := db.Where("email = ?", seed.Email).First(&existing).Error
	if err == nil {
		log.Infow("admin user already exists, skipping seed", "email", seed.Email)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := entity.User{
		Email:             seed.Email,
		Username:          seed.Username,
		Name:              "Administrator",
		PasswordHash:      string(hashedPasswordBytes),
		Role:              entity.RoleAdmin,
		SeenNotifications: true,
		Public:            true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Infow("admin user seeded", "email", seed.Email, "username", seed.Username)
	return nil
}
