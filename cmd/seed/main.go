package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/ikkim/toolchest-backend/config"
	"github.com/ikkim/toolchest-backend/internal/app/repository"
	"github.com/ikkim/toolchest-backend/internal/app/service"
	"github.com/ikkim/toolchest-backend/internal/db"
	apperrors "github.com/ikkim/toolchest-backend/internal/errors"
)

func main() {
	// 명령줄 인자 확인
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path> [-y]")
	}

	filePath := os.Args[1]
	assumeYes := len(os.Args) > 2 && os.Args[2] == "-y"

	// 설정 로드
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// DB 연결
	database, err := db.Open(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close(database)

	if err := db.Migrate(database); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// XLSX 파일 읽기
	fmt.Printf("Reading XLSX file: %s\n", filePath)
	file, err := os.Open(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX:", err)
	}
	defer file.Close()

	cat, err := readCatalog(file)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Tools: %d, Tags: %d, Assigned tools: %d, Skipped rows: %d\n",
		len(cat.Tools), len(cat.Tags), len(cat.Assignments), cat.Skipped)

	// 사용자 확인
	if !assumeYes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	toolRepo := repository.NewToolRepository(database)
	tagRepo := repository.NewTagRepository(database)
	importer := &catalogImporter{
		tools:     service.NewToolService(toolRepo, nil, 0),
		tags:      service.NewTagService(tagRepo, nil, 0),
		toolRepo:  toolRepo,
		tagRepo:   tagRepo,
		relations: service.NewRelationshipService(toolRepo, tagRepo, repository.NewRelationshipRepository(database), nil, 0, 0),
	}

	report, err := importer.Import(context.Background(), cat)
	if err != nil {
		log.Fatal("Import failed:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("  Tools created: %d (existing: %d)\n", report.ToolsCreated, report.ToolsExisting)
	fmt.Printf("  Tags created: %d (existing: %d)\n", report.TagsCreated, report.TagsExisting)
	fmt.Printf("  Assignments added: %d\n", report.Assigned)
	for _, w := range report.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
}

type importReport struct {
	ToolsCreated  int
	ToolsExisting int
	TagsCreated   int
	TagsExisting  int
	Assigned      int
	Warnings      []string
}

type catalogImporter struct {
	tools     service.ToolService
	tags      service.TagService
	toolRepo  repository.ToolRepository
	tagRepo   repository.TagRepository
	relations service.RelationshipService
}

// Import 이미 있는 slug 는 건너뛰고, 할당은 도구별 bulk assign 으로 반영
func (im *catalogImporter) Import(ctx context.Context, cat *catalog) (*importReport, error) {
	report := &importReport{}

	for _, input := range cat.Tools {
		if _, err := im.tools.CreateTool(ctx, input); err != nil {
			if apperrors.IsKind(err, apperrors.KindConflict) {
				report.ToolsExisting++
				continue
			}
			return nil, fmt.Errorf("create tool %q: %w", input.Slug, err)
		}
		report.ToolsCreated++
	}

	for _, input := range cat.Tags {
		if _, err := im.tags.CreateTag(ctx, input); err != nil {
			if apperrors.IsKind(err, apperrors.KindConflict) {
				report.TagsExisting++
				continue
			}
			return nil, fmt.Errorf("create tag %q: %w", input.Slug, err)
		}
		report.TagsCreated++
	}

	toolSlugs := make([]string, 0, len(cat.Assignments))
	for slug := range cat.Assignments {
		toolSlugs = append(toolSlugs, slug)
	}
	sort.Strings(toolSlugs)

	for _, toolSlug := range toolSlugs {
		tool, err := im.toolRepo.FindBySlug(ctx, toolSlug)
		if err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("unknown tool %q in assignments", toolSlug))
			continue
		}

		tagIDs := make([]uint, 0, len(cat.Assignments[toolSlug]))
		for _, tagSlug := range cat.Assignments[toolSlug] {
			tag, err := im.tagRepo.FindBySlug(ctx, tagSlug)
			if err != nil {
				report.Warnings = append(report.Warnings, fmt.Sprintf("unknown tag %q for tool %q", tagSlug, toolSlug))
				continue
			}
			tagIDs = append(tagIDs, tag.ID)
		}
		if len(tagIDs) == 0 {
			continue
		}

		op, err := im.relations.BuildBulkOperation(service.BulkAssign, []uint{tool.ID}, tagIDs)
		if err != nil {
			return nil, err
		}
		op.Confirmed = true
		result, err := im.relations.ExecuteBulkOperation(ctx, op)
		if err != nil {
			return nil, fmt.Errorf("assign tags to %q: %w", toolSlug, err)
		}
		report.Assigned += result.Added
	}

	return report, nil
}
