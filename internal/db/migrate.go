package db

import (
	"strings"

	"github.com/ikkim/toolchest-backend/config"
	"github.com/ikkim/toolchest-backend/internal/app/model"
	"github.com/ikkim/toolchest-backend/pkg/logger"
	"github.com/ikkim/toolchest-backend/pkg/util"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Models lists every table owned by the back office, in dependency order
func Models() []interface{} {
	return []interface{}{
		&model.Tool{},
		&model.Tag{},
		&model.ToolTag{},
		&model.ToolUsageStat{},
		&model.Alert{},
		&model.ErrorLog{},
		&model.AdminUser{},
	}
}

// Migrate runs database migrations
func Migrate(database *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := database.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed adds the catalog defaults and the first admin account (idempotent)
func Seed(database *gorm.DB, admin config.AdminConfig) error {
	logger.Info("Seeding initial data...")

	if err := seedCatalog(database); err != nil {
		logger.Error("Failed to seed catalog", err)
		return err
	}
	if err := seedAdmin(database, admin); err != nil {
		logger.Error("Failed to seed admin user", err)
		return err
	}

	logger.Info("Initial data seeded successfully")
	return nil
}

// seedCatalog 기본 도구와 태그, 연결 데이터 생성
func seedCatalog(database *gorm.DB) error {
	var count int64
	if err := database.Model(&model.Tool{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Catalog already seeded, skipping...", map[string]interface{}{
			"existing_tools": count,
		})
		return nil
	}

	tools := []model.Tool{
		{Slug: "base64", Name: "tools.base64.name", Description: "tools.base64.description", DisplayOrder: 1, IsActive: true},
		{Slug: "hash-generator", Name: "tools.hash.name", Description: "tools.hash.description", DisplayOrder: 2, IsActive: true},
		{Slug: "favicon-generator", Name: "tools.favicon.name", Description: "tools.favicon.description", DisplayOrder: 3, IsActive: true},
		{Slug: "markdown-to-pdf", Name: "tools.markdownPdf.name", Description: "tools.markdownPdf.description", DisplayOrder: 4, IsActive: true},
		{Slug: "format-converter", Name: "tools.formatConverter.name", Description: "tools.formatConverter.description", DisplayOrder: 5, IsActive: true},
	}
	tags := []model.Tag{
		{Slug: "encoding", Name: "tags.encoding", Color: "#3B82F6"},
		{Slug: "security", Name: "tags.security", Color: "#EF4444"},
		{Slug: "image", Name: "tags.image", Color: "#10B981"},
		{Slug: "document", Name: "tags.document", Color: "#F59E0B"},
		{Slug: "conversion", Name: "tags.conversion", Color: "#8B5CF6"},
		{Slug: "featured", Name: "tags.featured", Color: "#111827", IsSystem: true},
	}

	assignments := map[string][]string{
		"base64":            {"encoding", "conversion", "featured"},
		"hash-generator":    {"encoding", "security"},
		"favicon-generator": {"image"},
		"markdown-to-pdf":   {"document", "conversion"},
		"format-converter":  {"conversion", "document", "image"},
	}

	return database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&tools).Error; err != nil {
			return err
		}
		if err := tx.Create(&tags).Error; err != nil {
			return err
		}

		toolIDs := make(map[string]uint, len(tools))
		for _, t := range tools {
			toolIDs[t.Slug] = t.ID
		}
		tagIDs := make(map[string]uint, len(tags))
		for _, t := range tags {
			tagIDs[t.Slug] = t.ID
		}

		var links []model.ToolTag
		for toolSlug, tagSlugs := range assignments {
			for _, tagSlug := range tagSlugs {
				links = append(links, model.ToolTag{ToolID: toolIDs[toolSlug], TagID: tagIDs[tagSlug]})
			}
		}
		if err := tx.Omit(clause.Associations).Create(&links).Error; err != nil {
			return err
		}

		logger.Info("Catalog seeded successfully", map[string]interface{}{
			"tools":     len(tools),
			"tags":      len(tags),
			"tool_tags": len(links),
		})
		return nil
	})
}

// seedAdmin creates the configured admin once; without a password nothing is created
func seedAdmin(database *gorm.DB, admin config.AdminConfig) error {
	if admin.Password == "" {
		logger.Warn("ADMIN_PASSWORD not set, skipping admin seeding", nil)
		return nil
	}
	if err := util.CheckPasswordStrength(admin.Password); err != nil {
		return err
	}
	// 로그인 시 이메일을 소문자로 비교함
	email := strings.ToLower(strings.TrimSpace(admin.Email))

	var count int64
	if err := database.Model(&model.AdminUser{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := util.HashPassword(admin.Password)
	if err != nil {
		return err
	}
	user := model.AdminUser{
		Email:        email,
		PasswordHash: hash,
		Name:         admin.Name,
		Role:         model.AdminRoleAdmin,
	}
	if err := database.Create(&user).Error; err != nil {
		return err
	}

	logger.Info("Admin user seeded", map[string]interface{}{
		"email": email,
	})
	return nil
}
