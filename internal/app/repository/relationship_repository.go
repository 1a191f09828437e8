package repository

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/ikkim/toolchest-backend/internal/app/model"
	"github.com/ikkim/toolchest-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RelationshipRow is one tool_tags row with the tool and tag columns denormalized
type RelationshipRow struct {
	ToolID           uint      `json:"tool_id"`
	ToolSlug         string    `json:"tool_slug"`
	ToolName         string    `json:"tool_name"`
	ToolActive       bool      `json:"tool_active"`
	ToolDisplayOrder int       `json:"tool_display_order"`
	TagID            uint      `json:"tag_id"`
	TagSlug          string    `json:"tag_slug"`
	TagName          string    `json:"tag_name"`
	TagColor         string    `json:"tag_color"`
	AssignedAt       time.Time `json:"assigned_at"`
}

type RelationshipQuery struct {
	Search     string
	ToolIDs    []uint
	TagIDs     []uint
	ActiveOnly bool
}

// TagAssignment is the projection tag statistics are computed from
type TagAssignment struct {
	TagID      uint
	ToolID     uint
	ToolActive bool
	AssignedAt time.Time
}

// BulkWriteResult counts rows actually written by ApplyBulk
type BulkWriteResult struct {
	Inserted int64
	Deleted  int64
}

type RelationshipRepository interface {
	Create(ctx context.Context, link *model.ToolTag) error
	List(ctx context.Context, query RelationshipQuery) ([]RelationshipRow, error)
	FindAll(ctx context.Context) ([]model.ToolTag, error)
	FindByToolIDs(ctx context.Context, toolIDs []uint) ([]model.ToolTag, error)
	FindTagAssignments(ctx context.Context, tagID *uint) ([]TagAssignment, error)
	FindDangling(ctx context.Context) ([]model.ToolTag, error)
	FindOrphanedTools(ctx context.Context) ([]model.Tool, error)
	FindOrphanedTags(ctx context.Context) ([]model.Tag, error)
	ApplyBulk(ctx context.Context, add []model.ToolTag, remove []model.ToolTag) (BulkWriteResult, error)
	DeleteOrphanedTags(ctx context.Context, tagIDs []uint) ([]uint, error)
}

type relationshipRepository struct {
	db *gorm.DB
}

func NewRelationshipRepository(db *gorm.DB) RelationshipRepository {
	return &relationshipRepository{db: db}
}

func (r *relationshipRepository) Create(ctx context.Context, link *model.ToolTag) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(link).Error
}

// List 도구-태그 연결 목록 조회 (이름/slug 검색, ID 제한, 활성 도구 제한)
func (r *relationshipRepository) List(ctx context.Context, q RelationshipQuery) ([]RelationshipRow, error) {
	query := r.db.WithContext(ctx).
		Table("tool_tags").
		Select(`tool_tags.tool_id AS tool_id, tools.slug AS tool_slug, tools.name AS tool_name,
			tools.is_active AS tool_active, tools.display_order AS tool_display_order,
			tool_tags.tag_id AS tag_id, tags.slug AS tag_slug, tags.name AS tag_name,
			tags.color AS tag_color, tool_tags.created_at AS assigned_at`).
		Joins("JOIN tools ON tools.id = tool_tags.tool_id").
		Joins("JOIN tags ON tags.id = tool_tags.tag_id")

	if q.ActiveOnly {
		query = query.Where("tools.is_active = ?", true)
	}
	if len(q.ToolIDs) > 0 {
		query = query.Where("tool_tags.tool_id IN ?", q.ToolIDs)
	}
	if len(q.TagIDs) > 0 {
		query = query.Where("tool_tags.tag_id IN ?", q.TagIDs)
	}
	if q.Search != "" {
		like := "%" + strings.ToLower(q.Search) + "%"
		query = query.Where(
			"LOWER(tools.name) LIKE ? OR LOWER(tools.slug) LIKE ? OR LOWER(tags.name) LIKE ? OR LOWER(tags.slug) LIKE ?",
			like, like, like, like,
		)
	}

	var rows []RelationshipRow
	if err := query.Order("tool_tags.tool_id ASC, tool_tags.tag_id ASC").Scan(&rows).Error; err != nil {
		logger.Error("Failed to list relationships", err, map[string]interface{}{
			"search":      q.Search,
			"tool_ids":    q.ToolIDs,
			"tag_ids":     q.TagIDs,
			"active_only": q.ActiveOnly,
		})
		return nil, err
	}
	return rows, nil
}

func (r *relationshipRepository) FindAll(ctx context.Context) ([]model.ToolTag, error) {
	var links []model.ToolTag
	if err := r.db.WithContext(ctx).Order("tool_id ASC, tag_id ASC").Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (r *relationshipRepository) FindByToolIDs(ctx context.Context, toolIDs []uint) ([]model.ToolTag, error) {
	if len(toolIDs) == 0 {
		return []model.ToolTag{}, nil
	}
	var links []model.ToolTag
	if err := r.db.WithContext(ctx).
		Where("tool_id IN ?", toolIDs).
		Order("tool_id ASC, tag_id ASC").
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// FindTagAssignments returns every assignment joined with the tool's active flag,
// restricted to one tag when tagID is set
func (r *relationshipRepository) FindTagAssignments(ctx context.Context, tagID *uint) ([]TagAssignment, error) {
	query := r.db.WithContext(ctx).
		Table("tool_tags").
		Select("tool_tags.tag_id AS tag_id, tool_tags.tool_id AS tool_id, tools.is_active AS tool_active, tool_tags.created_at AS assigned_at").
		Joins("JOIN tools ON tools.id = tool_tags.tool_id")
	if tagID != nil {
		query = query.Where("tool_tags.tag_id = ?", *tagID)
	}

	var rows []TagAssignment
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindDangling 존재하지 않는 도구나 태그를 가리키는 연결 조회
func (r *relationshipRepository) FindDangling(ctx context.Context) ([]model.ToolTag, error) {
	var links []model.ToolTag
	err := r.db.WithContext(ctx).
		Table("tool_tags").
		Select("tool_tags.tool_id, tool_tags.tag_id, tool_tags.created_at").
		Joins("LEFT JOIN tools ON tools.id = tool_tags.tool_id").
		Joins("LEFT JOIN tags ON tags.id = tool_tags.tag_id").
		Where("tools.id IS NULL OR tags.id IS NULL").
		Order("tool_tags.tool_id ASC, tool_tags.tag_id ASC").
		Scan(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (r *relationshipRepository) FindOrphanedTools(ctx context.Context) ([]model.Tool, error) {
	var tools []model.Tool
	err := r.db.WithContext(ctx).
		Model(&model.Tool{}).
		Select("tools.*").
		Joins("LEFT JOIN tool_tags ON tool_tags.tool_id = tools.id").
		Where("tool_tags.tool_id IS NULL").
		Order("tools.id ASC").
		Find(&tools).Error
	if err != nil {
		return nil, err
	}
	return tools, nil
}

func (r *relationshipRepository) FindOrphanedTags(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	err := r.db.WithContext(ctx).
		Model(&model.Tag{}).
		Select("tags.*").
		Joins("LEFT JOIN tool_tags ON tool_tags.tag_id = tags.id").
		Where("tool_tags.tag_id IS NULL").
		Order("tags.id ASC").
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// ApplyBulk inserts and deletes pairs in one transaction.
// Existing pairs are skipped on insert, missing pairs are ignored on delete.
func (r *relationshipRepository) ApplyBulk(ctx context.Context, add []model.ToolTag, remove []model.ToolTag) (BulkWriteResult, error) {
	var result BulkWriteResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(add) > 0 {
			res := tx.Omit(clause.Associations).
				Clauses(clause.OnConflict{DoNothing: true}).
				Create(&add)
			if res.Error != nil {
				return res.Error
			}
			result.Inserted = res.RowsAffected
		}

		for _, group := range groupByTool(remove) {
			res := tx.Where("tool_id = ? AND tag_id IN ?", group.toolID, group.tagIDs).Delete(&model.ToolTag{})
			if res.Error != nil {
				return res.Error
			}
			result.Deleted += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		logger.Error("Bulk relationship write rolled back", err, map[string]interface{}{
			"insert_pairs": len(add),
			"delete_pairs": len(remove),
		})
		return BulkWriteResult{}, err
	}

	logger.Debug("Bulk relationship write committed", map[string]interface{}{
		"inserted": result.Inserted,
		"deleted":  result.Deleted,
	})
	return result, nil
}

// DeleteOrphanedTags re-checks each candidate inside the transaction and deletes only
// non-system tags that still have no tools. Returns the ids actually deleted.
func (r *relationshipRepository) DeleteOrphanedTags(ctx context.Context, tagIDs []uint) ([]uint, error) {
	if len(tagIDs) == 0 {
		return []uint{}, nil
	}

	var deleted []uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&model.Tag{}).
			Where("id IN ? AND is_system = ?", tagIDs, false).
			Where("NOT EXISTS (SELECT 1 FROM tool_tags WHERE tool_tags.tag_id = tags.id)").
			Order("id ASC").
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("id IN ?", ids).Delete(&model.Tag{}).Error; err != nil {
			return err
		}
		deleted = ids
		return nil
	})
	if err != nil {
		logger.Error("Failed to delete orphaned tags", err, map[string]interface{}{
			"candidates": tagIDs,
		})
		return nil, err
	}
	if deleted == nil {
		deleted = []uint{}
	}
	return deleted, nil
}

type toolTagGroup struct {
	toolID uint
	tagIDs []uint
}

func groupByTool(links []model.ToolTag) []toolTagGroup {
	byTool := make(map[uint][]uint)
	for _, l := range links {
		byTool[l.ToolID] = append(byTool[l.ToolID], l.TagID)
	}
	groups := make([]toolTagGroup, 0, len(byTool))
	for toolID, tagIDs := range byTool {
		groups = append(groups, toolTagGroup{toolID: toolID, tagIDs: tagIDs})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].toolID < groups[j].toolID })
	return groups
}
