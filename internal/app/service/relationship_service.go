package service

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ikkim/toolchest-backend/internal/app/model"
	"github.com/ikkim/toolchest-backend/internal/app/repository"
	"github.com/ikkim/toolchest-backend/internal/cache"
	apperrors "github.com/ikkim/toolchest-backend/internal/errors"
	"github.com/ikkim/toolchest-backend/internal/monitoring"
	"github.com/ikkim/toolchest-backend/pkg/logger"
)

const (
	DefaultConfirmationThreshold = 25
	maxTagsPerTool               = 10

	relationshipsCachePrefix = "relationships:"
	tagUsageCachePrefix      = "tag-usage:"
)

type RelationshipService interface {
	GetAllRelationships(ctx context.Context, filter RelationshipFilter, sortBy RelationshipSort) ([]Relationship, error)
	BuildBulkOperation(opType BulkOperationType, toolIDs, tagIDs []uint) (BulkTagOperation, error)
	PreviewBulkOperation(ctx context.Context, op BulkTagOperation) (*BulkOperationPreview, error)
	ExecuteBulkOperation(ctx context.Context, op BulkTagOperation) (*BulkOperationResult, error)
	FindOrphanedEntities(ctx context.Context) (*OrphanedEntityCheck, error)
	AutoResolveOrphans(ctx context.Context) (*OrphanResolution, error)
	GetTagUsageStatistics(ctx context.Context, tagID *uint) ([]TagUsageStatistics, error)
	ValidateRelationships(ctx context.Context, toolIDs, tagIDs []uint) (*RelationshipValidationResult, error)
}

type relationshipService struct {
	baseService
	toolRepo              repository.ToolRepository
	tagRepo               repository.TagRepository
	relationRepo          repository.RelationshipRepository
	confirmationThreshold int
}

func NewRelationshipService(
	toolRepo repository.ToolRepository,
	tagRepo repository.TagRepository,
	relationRepo repository.RelationshipRepository,
	c *cache.Cache,
	cacheTTL time.Duration,
	confirmationThreshold int,
) RelationshipService {
	if confirmationThreshold <= 0 {
		confirmationThreshold = DefaultConfirmationThreshold
	}
	return &relationshipService{
		baseService:           newBaseService(c, cacheTTL),
		toolRepo:              toolRepo,
		tagRepo:               tagRepo,
		relationRepo:          relationRepo,
		confirmationThreshold: confirmationThreshold,
	}
}

// NewBulkTagOperation dedups the id sets and derives the estimate and the confirmation flag.
// Every remove needs confirmation; an assign needs it once the estimate exceeds threshold.
func NewBulkTagOperation(opType BulkOperationType, toolIDs, tagIDs []uint, threshold int) (BulkTagOperation, error) {
	if err := ValidateRequired(map[string]interface{}{
		"type":     string(opType),
		"tool_ids": toolIDs,
		"tag_ids":  tagIDs,
	}); err != nil {
		return BulkTagOperation{}, err
	}
	if opType != BulkAssign && opType != BulkRemove {
		return BulkTagOperation{}, apperrors.Validation(
			apperrors.BulkInvalidType,
			fmt.Sprintf("operation type must be %q or %q", BulkAssign, BulkRemove),
			map[string]string{"type": "invalid"},
		)
	}
	if threshold <= 0 {
		threshold = DefaultConfirmationThreshold
	}

	op := BulkTagOperation{
		Type:    opType,
		ToolIDs: uniqueSorted(toolIDs),
		TagIDs:  uniqueSorted(tagIDs),
	}
	op.EstimatedChanges = len(op.ToolIDs) * len(op.TagIDs)
	op.RequiresConfirmation = opType == BulkRemove || op.EstimatedChanges > threshold
	return op, nil
}

func (s *relationshipService) BuildBulkOperation(opType BulkOperationType, toolIDs, tagIDs []uint) (BulkTagOperation, error) {
	return NewBulkTagOperation(opType, toolIDs, tagIDs, s.confirmationThreshold)
}

// normalize rebuilds the derived fields; a caller-set confirmation requirement is kept
func (s *relationshipService) normalize(op BulkTagOperation) (BulkTagOperation, error) {
	normalized, err := NewBulkTagOperation(op.Type, op.ToolIDs, op.TagIDs, s.confirmationThreshold)
	if err != nil {
		return BulkTagOperation{}, err
	}
	normalized.RequiresConfirmation = normalized.RequiresConfirmation || op.RequiresConfirmation
	normalized.Confirmed = op.Confirmed
	return normalized, nil
}

// GetAllRelationships 도구-태그 연결 목록 조회 (필터, 정렬, 캐시)
func (s *relationshipService) GetAllRelationships(ctx context.Context, filter RelationshipFilter, sortBy RelationshipSort) ([]Relationship, error) {
	if sortBy.Field == "" {
		sortBy.Field = SortByDisplayOrder
	}
	if sortBy.Order == "" {
		sortBy.Order = SortAsc
	}
	if !validSortField(sortBy.Field) {
		return nil, apperrors.Validation(apperrors.ValidationInvalidInput,
			fmt.Sprintf("unsupported sort field %q", sortBy.Field), map[string]string{"sort": "invalid"})
	}
	if sortBy.Order != SortAsc && sortBy.Order != SortDesc {
		return nil, apperrors.Validation(apperrors.ValidationInvalidInput,
			fmt.Sprintf("unsupported sort order %q", sortBy.Order), map[string]string{"order": "invalid"})
	}

	filter.Search = strings.TrimSpace(filter.Search)
	filter.ToolIDs = uniqueSorted(filter.ToolIDs)
	filter.TagIDs = uniqueSorted(filter.TagIDs)

	key := fmt.Sprintf("%ssearch=%s|tools=%v|tags=%v|active=%t|sort=%s:%s",
		relationshipsCachePrefix, strings.ToLower(filter.Search), filter.ToolIDs, filter.TagIDs,
		filter.ActiveOnly, sortBy.Field, sortBy.Order)

	return getCached(ctx, &s.baseService, key, 0, func(ctx context.Context) ([]Relationship, error) {
		rows, err := s.relationRepo.List(ctx, repository.RelationshipQuery{
			Search:     filter.Search,
			ToolIDs:    filter.ToolIDs,
			TagIDs:     filter.TagIDs,
			ActiveOnly: filter.ActiveOnly,
		})
		if err != nil {
			return nil, apperrors.Classify(err, "list relationships")
		}

		assignments, err := s.relationRepo.FindTagAssignments(ctx, nil)
		if err != nil {
			return nil, apperrors.Classify(err, "count tag assignments")
		}
		counts := make(map[uint]int)
		for _, a := range assignments {
			counts[a.TagID]++
		}

		relationships := make([]Relationship, 0, len(rows))
		for _, r := range rows {
			relationships = append(relationships, Relationship{
				ToolID:           r.ToolID,
				ToolSlug:         r.ToolSlug,
				ToolName:         r.ToolName,
				ToolActive:       r.ToolActive,
				ToolDisplayOrder: r.ToolDisplayOrder,
				TagID:            r.TagID,
				TagSlug:          r.TagSlug,
				TagName:          r.TagName,
				TagColor:         r.TagColor,
				AssignmentCount:  counts[r.TagID],
				AssignedAt:       r.AssignedAt,
			})
		}
		sortRelationships(relationships, sortBy)
		return relationships, nil
	})
}

func validSortField(f RelationshipSortField) bool {
	switch f {
	case SortByToolName, SortByTagName, SortByDisplayOrder, SortByAssignmentCount, SortByLastModified:
		return true
	}
	return false
}

// sortRelationships orders by the requested field; ties always fall back to tool id then tag id ascending
func sortRelationships(rows []Relationship, sortBy RelationshipSort) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		var c int
		switch sortBy.Field {
		case SortByToolName:
			c = strings.Compare(strings.ToLower(a.ToolName), strings.ToLower(b.ToolName))
		case SortByTagName:
			c = strings.Compare(strings.ToLower(a.TagName), strings.ToLower(b.TagName))
		case SortByDisplayOrder:
			c = cmp.Compare(a.ToolDisplayOrder, b.ToolDisplayOrder)
		case SortByAssignmentCount:
			c = cmp.Compare(a.AssignmentCount, b.AssignmentCount)
		case SortByLastModified:
			c = a.AssignedAt.Compare(b.AssignedAt)
		}
		if sortBy.Order == SortDesc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		if a.ToolID != b.ToolID {
			return a.ToolID < b.ToolID
		}
		return a.TagID < b.TagID
	})
}

type bulkPlan struct {
	preview *BulkOperationPreview
	add     []model.ToolTag
	remove  []model.ToolTag
}

// plan computes the per-tool diff against the store without writing anything
func (s *relationshipService) plan(ctx context.Context, op BulkTagOperation) (*bulkPlan, error) {
	tools, err := s.toolRepo.FindByIDs(ctx, op.ToolIDs)
	if err != nil {
		return nil, apperrors.Classify(err, "load tools for bulk operation")
	}
	tags, err := s.tagRepo.FindByIDs(ctx, op.TagIDs)
	if err != nil {
		return nil, apperrors.Classify(err, "load tags for bulk operation")
	}

	knownTools := make(map[uint]bool, len(tools))
	toolIDs := make([]uint, 0, len(tools))
	for _, t := range tools {
		knownTools[t.ID] = true
		toolIDs = append(toolIDs, t.ID)
	}
	knownTags := make(map[uint]bool, len(tags))
	tagIDs := make([]uint, 0, len(tags))
	for _, t := range tags {
		knownTags[t.ID] = true
		tagIDs = append(tagIDs, t.ID)
	}
	sort.Slice(tagIDs, func(i, j int) bool { return tagIDs[i] < tagIDs[j] })

	links, err := s.relationRepo.FindByToolIDs(ctx, toolIDs)
	if err != nil {
		return nil, apperrors.Classify(err, "load current tool tags")
	}
	current := make(map[uint]map[uint]bool, len(tools))
	for _, l := range links {
		if current[l.ToolID] == nil {
			current[l.ToolID] = make(map[uint]bool)
		}
		current[l.ToolID][l.TagID] = true
	}

	p := &bulkPlan{preview: &BulkOperationPreview{
		Operation:      op,
		Tools:          make([]ToolTagDiff, 0, len(tools)),
		UnknownToolIDs: missingIDs(op.ToolIDs, knownTools),
		UnknownTagIDs:  missingIDs(op.TagIDs, knownTags),
		Warnings:       []string{},
	}}

	for _, tool := range tools {
		has := current[tool.ID]
		next := make(map[uint]bool, len(has)+len(tagIDs))
		for id := range has {
			next[id] = true
		}

		diff := ToolTagDiff{
			ToolID:        tool.ID,
			ToolSlug:      tool.Slug,
			CurrentTagIDs: setToSorted(has),
			AddedTagIDs:   []uint{},
			RemovedTagIDs: []uint{},
		}
		for _, tagID := range tagIDs {
			switch op.Type {
			case BulkAssign:
				if !has[tagID] {
					next[tagID] = true
					diff.AddedTagIDs = append(diff.AddedTagIDs, tagID)
					p.add = append(p.add, model.ToolTag{ToolID: tool.ID, TagID: tagID})
				}
			case BulkRemove:
				if has[tagID] {
					delete(next, tagID)
					diff.RemovedTagIDs = append(diff.RemovedTagIDs, tagID)
					p.remove = append(p.remove, model.ToolTag{ToolID: tool.ID, TagID: tagID})
				}
			}
		}
		diff.NewTagIDs = setToSorted(next)
		p.preview.Tools = append(p.preview.Tools, diff)
	}

	p.preview.Summary = BulkPreviewSummary{
		TotalTools:           len(p.preview.Tools),
		TotalTagChanges:      len(p.add) + len(p.remove),
		NewRelationships:     len(p.add),
		RemovedRelationships: len(p.remove),
	}

	if len(p.preview.UnknownToolIDs) > 0 {
		p.preview.Warnings = append(p.preview.Warnings,
			"unknown tool ids excluded: "+joinIDs(p.preview.UnknownToolIDs))
	}
	if len(p.preview.UnknownTagIDs) > 0 {
		p.preview.Warnings = append(p.preview.Warnings,
			"unknown tag ids excluded: "+joinIDs(p.preview.UnknownTagIDs))
	}
	if p.preview.Summary.TotalTagChanges == 0 {
		p.preview.Warnings = append(p.preview.Warnings,
			"operation changes nothing: every pair is already in the target state")
	}
	return p, nil
}

// PreviewBulkOperation 대량 태그 작업 미리보기 (저장소 변경 없음)
func (s *relationshipService) PreviewBulkOperation(ctx context.Context, op BulkTagOperation) (*BulkOperationPreview, error) {
	op, err := s.normalize(op)
	if err != nil {
		return nil, err
	}
	p, err := s.plan(ctx, op)
	if err != nil {
		return nil, err
	}
	return p.preview, nil
}

// ExecuteBulkOperation 대량 태그 작업 실행 (단일 트랜잭션)
func (s *relationshipService) ExecuteBulkOperation(ctx context.Context, op BulkTagOperation) (*BulkOperationResult, error) {
	op, err := s.normalize(op)
	if err != nil {
		return nil, err
	}
	if op.RequiresConfirmation && !op.Confirmed {
		return nil, apperrors.Validation(
			apperrors.BulkConfirmationRequired,
			fmt.Sprintf("%s of up to %d relationships requires confirmation", op.Type, op.EstimatedChanges),
			map[string]string{"confirmed": "required"},
		)
	}

	p, err := s.plan(ctx, op)
	if err != nil {
		return nil, err
	}

	result := &BulkOperationResult{
		Type:     op.Type,
		Warnings: p.preview.Warnings,
	}

	if len(p.add) > 0 || len(p.remove) > 0 {
		written, err := s.relationRepo.ApplyBulk(ctx, p.add, p.remove)
		if err != nil {
			return nil, apperrors.Storage("bulk "+string(op.Type), err)
		}
		result.Added = int(written.Inserted)
		result.Removed = int(written.Deleted)
		s.invalidateCache(ctx, relationshipsCachePrefix, tagUsageCachePrefix)
	}

	touchedTools := make(map[uint]bool)
	touchedTags := make(map[uint]bool)
	for _, pairs := range [][]model.ToolTag{p.add, p.remove} {
		for _, pair := range pairs {
			touchedTools[pair.ToolID] = true
			touchedTags[pair.TagID] = true
		}
	}
	result.TotalChanges = result.Added + result.Removed
	result.ToolsAffected = len(touchedTools)
	result.TagsAffected = len(touchedTags)
	result.Committed = true
	monitoring.RecordBulkOperation(string(op.Type), result.TotalChanges)

	logger.Info("Bulk tag operation executed", map[string]interface{}{
		"type":           op.Type,
		"tool_ids":       op.ToolIDs,
		"tag_ids":        op.TagIDs,
		"total_changes":  result.TotalChanges,
		"tools_affected": result.ToolsAffected,
		"tags_affected":  result.TagsAffected,
		"warnings":       len(result.Warnings),
	})
	return result, nil
}

// FindOrphanedEntities 태그 없는 도구와 도구 없는 태그 조회
func (s *relationshipService) FindOrphanedEntities(ctx context.Context) (*OrphanedEntityCheck, error) {
	tools, err := s.relationRepo.FindOrphanedTools(ctx)
	if err != nil {
		return nil, apperrors.Classify(err, "find orphaned tools")
	}
	tags, err := s.relationRepo.FindOrphanedTags(ctx)
	if err != nil {
		return nil, apperrors.Classify(err, "find orphaned tags")
	}

	check := &OrphanedEntityCheck{
		OrphanedTools:    make([]OrphanTool, 0, len(tools)),
		OrphanedTags:     make([]OrphanTag, 0, len(tags)),
		SuggestedActions: []string{},
	}

	for _, t := range tools {
		check.OrphanedTools = append(check.OrphanedTools, OrphanTool{ID: t.ID, Slug: t.Slug, Name: t.Name, IsActive: t.IsActive})
		check.SuggestedActions = append(check.SuggestedActions, fmt.Sprintf("review untagged tool %q", t.Slug))
	}

	protected := 0
	for _, t := range tags {
		check.OrphanedTags = append(check.OrphanedTags, OrphanTag{ID: t.ID, Slug: t.Slug, Name: t.Name, IsSystem: t.IsSystem})
		if t.IsSystem {
			protected++
			check.SuggestedActions = append(check.SuggestedActions, fmt.Sprintf("assign system tag %q to a tool or keep it unused", t.Slug))
			continue
		}
		check.SuggestedActions = append(check.SuggestedActions, fmt.Sprintf("delete unused tag %q", t.Slug))
	}

	check.CanAutoResolve = len(tags) > 0 && protected == 0
	return check, nil
}

// AutoResolveOrphans deletes unused tags. Untagged tools are only reported.
// System tags are skipped per tag, so the remaining orphans are removed even when
// the check reported CanAutoResolve=false because of them.
func (s *relationshipService) AutoResolveOrphans(ctx context.Context) (*OrphanResolution, error) {
	check, err := s.FindOrphanedEntities(ctx)
	if err != nil {
		return nil, err
	}

	resolution := &OrphanResolution{
		ToolsReviewed: len(check.OrphanedTools),
		RemovedTagIDs: []uint{},
		SkippedTags:   []SkippedTag{},
	}

	var candidates []uint
	slugs := make(map[uint]string, len(check.OrphanedTags))
	for _, t := range check.OrphanedTags {
		slugs[t.ID] = t.Slug
		if t.IsSystem {
			resolution.SkippedTags = append(resolution.SkippedTags, SkippedTag{TagID: t.ID, Slug: t.Slug, Reason: "system tag is protected"})
			continue
		}
		candidates = append(candidates, t.ID)
	}

	deleted, err := s.relationRepo.DeleteOrphanedTags(ctx, candidates)
	if err != nil {
		return nil, apperrors.Storage("auto-resolve orphans", err)
	}

	removed := make(map[uint]bool, len(deleted))
	for _, id := range deleted {
		removed[id] = true
	}
	for _, id := range candidates {
		if !removed[id] {
			resolution.SkippedTags = append(resolution.SkippedTags, SkippedTag{TagID: id, Slug: slugs[id], Reason: "tag was assigned to a tool before deletion"})
		}
	}
	resolution.RemovedTagIDs = deleted
	resolution.TagsRemoved = len(deleted)

	if len(deleted) > 0 {
		s.invalidateCache(ctx, tagsCachePrefix, relationshipsCachePrefix, tagUsageCachePrefix)
	}

	logger.Info("Orphan auto-resolution finished", map[string]interface{}{
		"tools_reviewed": resolution.ToolsReviewed,
		"tags_removed":   resolution.TagsRemoved,
		"tags_skipped":   len(resolution.SkippedTags),
	})
	return resolution, nil
}

// GetTagUsageStatistics returns every tag ranked by tool count, or just tagID's entry
func (s *relationshipService) GetTagUsageStatistics(ctx context.Context, tagID *uint) ([]TagUsageStatistics, error) {
	all, err := getCached(ctx, &s.baseService, tagUsageCachePrefix+"all", 0, s.computeTagUsage)
	if err != nil {
		return nil, err
	}
	if tagID == nil {
		return all, nil
	}
	for _, st := range all {
		if st.TagID == *tagID {
			return []TagUsageStatistics{st}, nil
		}
	}
	return nil, apperrors.NotFoundError(apperrors.TagNotFound, "tag not found", strconv.FormatUint(uint64(*tagID), 10))
}

func (s *relationshipService) computeTagUsage(ctx context.Context) ([]TagUsageStatistics, error) {
	tags, err := s.tagRepo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Classify(err, "load tags")
	}
	totalTools, _, err := s.toolRepo.Count(ctx)
	if err != nil {
		return nil, apperrors.Classify(err, "count tools")
	}
	assignments, err := s.relationRepo.FindTagAssignments(ctx, nil)
	if err != nil {
		return nil, apperrors.Classify(err, "load tag assignments")
	}

	now := s.now()
	since7 := now.AddDate(0, 0, -7)
	since30 := now.AddDate(0, 0, -30)

	stats := make([]TagUsageStatistics, len(tags))
	index := make(map[uint]int, len(tags))
	for i, t := range tags {
		stats[i] = TagUsageStatistics{TagID: t.ID, TagSlug: t.Slug, TagName: t.Name}
		index[t.ID] = i
	}

	for _, a := range assignments {
		i, ok := index[a.TagID]
		if !ok {
			continue
		}
		st := &stats[i]
		st.TotalTools++
		if a.ToolActive {
			st.ActiveTools++
		} else {
			st.InactiveTools++
		}
		if !a.AssignedAt.Before(since7) {
			st.AddedLast7Days++
		}
		if !a.AssignedAt.Before(since30) {
			st.AddedLast30Days++
		}
	}

	for i := range stats {
		if totalTools > 0 {
			stats[i].UsagePercentage = round2(float64(stats[i].TotalTools) / float64(totalTools) * 100)
		}
	}

	sort.SliceStable(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		if a.TotalTools != b.TotalTools {
			return a.TotalTools > b.TotalTools
		}
		if a.TagName != b.TagName {
			return a.TagName < b.TagName
		}
		return a.TagID < b.TagID
	})
	for i := range stats {
		stats[i].PopularityRank = i + 1
	}
	return stats, nil
}

// ValidateRelationships 연결 무결성 검사 (error / warning / suggestion)
func (s *relationshipService) ValidateRelationships(ctx context.Context, toolIDs, tagIDs []uint) (*RelationshipValidationResult, error) {
	tools, err := s.toolRepo.FindAll(ctx, repository.ToolFilter{})
	if err != nil {
		return nil, apperrors.Classify(err, "load tools")
	}
	tags, err := s.tagRepo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Classify(err, "load tags")
	}
	links, err := s.relationRepo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Classify(err, "load tool tags")
	}
	dangling, err := s.relationRepo.FindDangling(ctx)
	if err != nil {
		return nil, apperrors.Classify(err, "find dangling tool tags")
	}

	result := &RelationshipValidationResult{
		Errors:      []ValidationIssue{},
		Warnings:    []ValidationIssue{},
		Suggestions: []ValidationIssue{},
	}

	toolByID := make(map[uint]model.Tool, len(tools))
	for _, t := range tools {
		toolByID[t.ID] = t
	}
	tagByID := make(map[uint]model.Tag, len(tags))
	for _, t := range tags {
		tagByID[t.ID] = t
	}

	toolScope := toSet(toolIDs)
	tagScope := toSet(tagIDs)

	for _, id := range uniqueSorted(toolIDs) {
		if _, ok := toolByID[id]; !ok {
			result.Errors = append(result.Errors, ValidationIssue{
				Category: IssueError, Code: apperrors.ToolNotFound,
				Message: fmt.Sprintf("tool %d does not exist", id), ToolID: uintPtr(id),
			})
		}
	}
	for _, id := range uniqueSorted(tagIDs) {
		if _, ok := tagByID[id]; !ok {
			result.Errors = append(result.Errors, ValidationIssue{
				Category: IssueError, Code: apperrors.TagNotFound,
				Message: fmt.Sprintf("tag %d does not exist", id), TagID: uintPtr(id),
			})
		}
	}

	for _, d := range dangling {
		if !inScope(toolScope, d.ToolID) || !inScope(tagScope, d.TagID) {
			continue
		}
		result.Errors = append(result.Errors, ValidationIssue{
			Category: IssueError, Code: apperrors.RelationDangling,
			Message: fmt.Sprintf("assignment of tag %d to tool %d references a missing record", d.TagID, d.ToolID),
			ToolID:  uintPtr(d.ToolID), TagID: uintPtr(d.TagID),
		})
	}

	tagsPerTool := make(map[uint]int)
	toolsPerTag := make(map[uint]int)
	for _, l := range links {
		_, toolOK := toolByID[l.ToolID]
		_, tagOK := tagByID[l.TagID]
		if !toolOK || !tagOK {
			continue
		}
		tagsPerTool[l.ToolID]++
		toolsPerTag[l.TagID]++
	}

	for _, t := range tools {
		if !inScope(toolScope, t.ID) {
			continue
		}
		n := tagsPerTool[t.ID]
		switch {
		case n == 0:
			result.Warnings = append(result.Warnings, ValidationIssue{
				Category: IssueWarning, Code: apperrors.RelationUntagged,
				Message: fmt.Sprintf("tool %q has no tags", t.Slug), ToolID: uintPtr(t.ID),
			})
		case !t.IsActive:
			result.Warnings = append(result.Warnings, ValidationIssue{
				Category: IssueWarning, Code: apperrors.RelationInactive,
				Message: fmt.Sprintf("inactive tool %q still carries %d tags", t.Slug, n), ToolID: uintPtr(t.ID),
			})
		}
		if n > maxTagsPerTool {
			result.Suggestions = append(result.Suggestions, ValidationIssue{
				Category: IssueSuggestion, Code: apperrors.RelationOverload,
				Message: fmt.Sprintf("tool %q carries %d tags, consider consolidating", t.Slug, n), ToolID: uintPtr(t.ID),
			})
		}
	}

	for _, t := range tags {
		if !inScope(tagScope, t.ID) {
			continue
		}
		switch toolsPerTag[t.ID] {
		case 0:
			result.Warnings = append(result.Warnings, ValidationIssue{
				Category: IssueWarning, Code: apperrors.RelationUnused,
				Message: fmt.Sprintf("tag %q is not assigned to any tool", t.Slug), TagID: uintPtr(t.ID),
			})
		case 1:
			result.Suggestions = append(result.Suggestions, ValidationIssue{
				Category: IssueSuggestion, Code: apperrors.RelationSingleUse,
				Message: fmt.Sprintf("tag %q is used by a single tool", t.Slug), TagID: uintPtr(t.ID),
			})
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result, nil
}

func uniqueSorted(ids []uint) []uint {
	if len(ids) == 0 {
		return []uint{}
	}
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func setToSorted(set map[uint]bool) []uint {
	out := make([]uint, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func missingIDs(ids []uint, known map[uint]bool) []uint {
	out := []uint{}
	for _, id := range ids {
		if !known[id] {
			out = append(out, id)
		}
	}
	return out
}

func toSet(ids []uint) map[uint]bool {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// inScope treats a nil scope as unrestricted
func inScope(scope map[uint]bool, id uint) bool {
	return scope == nil || scope[id]
}

func joinIDs(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ", ")
}

func uintPtr(v uint) *uint {
	return &v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
