package gormstore

import (
	"fmt"

	"github.com/dom/shopcook-api/internal/domain"
	"github.com/dom/shopcook-api/internal/repository"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

func NewConnection(driver, databaseURL string, logLevel logger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(databaseURL)
	case DriverMySQL:
		dialector = mysql.Open(databaseURL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Models lists every persisted type in dependency order.
func Models() []interface{} {
	return []interface{}{
		&domain.User{},
		&domain.PasswordResetToken{},
		&domain.Category{},
		&domain.Ingredient{},
		&domain.Recipe{},
		&domain.RecipeIngredient{},
		&domain.Rating{},
		&domain.Comment{},
		&domain.Favorite{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:          NewUserRepository(db),
		PasswordReset: NewPasswordResetRepository(db),
		Recipe:        NewRecipeRepository(db),
		Category:      NewCategoryRepository(db),
		Ingredient:    NewIngredientRepository(db),
		Rating:        NewRatingRepository(db),
		Comment:       NewCommentRepository(db),
		Favorite:      NewFavoriteRepository(db),
	}
}
