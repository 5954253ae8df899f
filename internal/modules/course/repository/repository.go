package repository

import (
	"context"

	"anoa.com/survivehub/internal/entity"
	"anoa.com/survivehub/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CourseRepository interface {
	CountSlugs(ctx context.Context, base string) (int64, error)
	Create(ctx context.Context, course *entity.Course) error
	FindBySlug(ctx context.Context, slug string) (*entity.Course, error)
	List(ctx context.Context) ([]entity.Course, error)
	Update(ctx context.Context, course *entity.Course) error
	Delete(ctx context.Context, id uuid.UUID) error

	CountModuleSlugs(ctx context.Context, base string) (int64, error)
	// CreateModule numbers the module after the course's existing modules.
	CreateModule(ctx context.Context, module *entity.Module) error
	FindModuleBySlug(ctx context.Context, slug string) (*entity.Module, error)
	ModuleIDs(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error)
	ListReportedModules(ctx context.Context) ([]entity.Module, error)
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) CountSlugs(ctx context.Context, base string) (int64, error) {
	return database.CountSlugs(r.db.WithContext(ctx), &entity.Course{}, base)
}

func (r *courseRepository) Create(ctx context.Context, course *entity.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepository) FindBySlug(ctx context.Context, slug string) (*entity.Course, error) {
	var course entity.Course
	err := r.db.WithContext(ctx).
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("step asc")
		}).
		Where("slug = ?", slug).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) List(ctx context.Context) ([]entity.Course, error) {
	var courses []entity.Course
	err := r.db.WithContext(ctx).Order("created_at desc, id desc").Find(&courses).Error
	return courses, err
}

func (r *courseRepository) Update(ctx context.Context, course *entity.Course) error {
	return r.db.WithContext(ctx).Omit("Modules").Save(course).Error
}

func (r *courseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Course{}).Error
}

func (r *courseRepository) CountModuleSlugs(ctx context.Context, base string) (int64, error) {
	return database.CountSlugs(r.db.WithContext(ctx), &entity.Module{}, base)
}

func (r *courseRepository) CreateModule(ctx context.Context, module *entity.Module) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&entity.Module{}).Where("course_id = ?", module.CourseID).Count(&existing).Error; err != nil {
			return err
		}
		module.Step = int(existing) + 1
		return tx.Create(module).Error
	})
}

func (r *courseRepository) FindModuleBySlug(ctx context.Context, slug string) (*entity.Module, error) {
	var module entity.Module
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&module).Error; err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *courseRepository) ModuleIDs(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&entity.Module{}).Where("course_id = ?", courseID).Pluck("id", &ids).Error
	return ids, err
}

func (r *courseRepository) ListReportedModules(ctx context.Context) ([]entity.Module, error) {
	var modules []entity.Module
	err := r.db.WithContext(ctx).Where("is_reported = ?", true).Order("created_at desc").Find(&modules).Error
	return modules, err
}
