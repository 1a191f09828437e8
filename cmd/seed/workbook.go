package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ikkim/toolchest-backend/internal/app/service"
	"github.com/xuri/excelize/v2"
)

const (
	toolsSheet       = "Tools"
	tagsSheet        = "Tags"
	assignmentsSheet = "Assignments"
)

// catalog 워크북에서 읽은 도구, 태그, 할당 (tool slug -> tag slugs)
type catalog struct {
	Tools       []service.ToolInput
	Tags        []service.TagInput
	Assignments map[string][]string
	Skipped     int
}

// readCatalog 시트 구성
//
//	Tools:       slug | name | description | icon_url | display_order | is_active
//	Tags:        slug | name | description | color | is_system
//	Assignments: tool_slug | tag_slug
//
// 첫 행은 헤더. Assignments 시트는 없어도 됨
func readCatalog(r io.Reader) (*catalog, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	out := &catalog{Assignments: map[string][]string{}}

	toolRows, err := sheetRows(f, toolsSheet, true)
	if err != nil {
		return nil, err
	}
	seenTools := make(map[string]bool)
	for _, row := range toolRows {
		slug := strings.ToLower(cell(row, 0))
		name := cell(row, 1)
		if slug == "" || name == "" || seenTools[slug] {
			out.Skipped++
			continue
		}
		seenTools[slug] = true

		input := service.ToolInput{
			Slug:        slug,
			Name:        name,
			Description: cell(row, 2),
			IconURL:     cell(row, 3),
		}
		if order, err := strconv.Atoi(cell(row, 4)); err == nil {
			input.DisplayOrder = order
		}
		if active, err := strconv.ParseBool(cell(row, 5)); err == nil {
			input.IsActive = &active
		}
		out.Tools = append(out.Tools, input)
	}

	tagRows, err := sheetRows(f, tagsSheet, true)
	if err != nil {
		return nil, err
	}
	seenTags := make(map[string]bool)
	for _, row := range tagRows {
		slug := strings.ToLower(cell(row, 0))
		name := cell(row, 1)
		if slug == "" || name == "" || seenTags[slug] {
			out.Skipped++
			continue
		}
		seenTags[slug] = true

		isSystem, _ := strconv.ParseBool(cell(row, 4))
		out.Tags = append(out.Tags, service.TagInput{
			Slug:        slug,
			Name:        name,
			Description: cell(row, 2),
			Color:       cell(row, 3),
			IsSystem:    isSystem,
		})
	}

	assignRows, err := sheetRows(f, assignmentsSheet, false)
	if err != nil {
		return nil, err
	}
	for _, row := range assignRows {
		toolSlug := strings.ToLower(cell(row, 0))
		tagSlug := strings.ToLower(cell(row, 1))
		if toolSlug == "" || tagSlug == "" {
			out.Skipped++
			continue
		}
		out.Assignments[toolSlug] = append(out.Assignments[toolSlug], tagSlug)
	}

	return out, nil
}

// sheetRows 헤더를 제외한 행; required 가 아니면 시트가 없을 때 nil
func sheetRows(f *excelize.File, sheet string, required bool) ([][]string, error) {
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		if required {
			return nil, fmt.Errorf("sheet %q not found", sheet)
		}
		return nil, nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
