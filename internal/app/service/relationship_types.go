package service

import (
	"time"
)

type RelationshipSortField string

const (
	SortByToolName        RelationshipSortField = "tool_name"
	SortByTagName         RelationshipSortField = "tag_name"
	SortByDisplayOrder    RelationshipSortField = "display_order"
	SortByAssignmentCount RelationshipSortField = "assignment_count"
	SortByLastModified    RelationshipSortField = "last_modified"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// RelationshipFilter narrows the relationship listing; empty fields do not filter
type RelationshipFilter struct {
	Search     string `json:"search,omitempty"`
	ToolIDs    []uint `json:"tool_ids,omitempty"`
	TagIDs     []uint `json:"tag_ids,omitempty"`
	ActiveOnly bool   `json:"active_only,omitempty"`
}

type RelationshipSort struct {
	Field RelationshipSortField `json:"field"`
	Order SortOrder             `json:"order"`
}

// Relationship is one tool-tag pair with denormalized names
type Relationship struct {
	ToolID           uint      `json:"tool_id"`
	ToolSlug         string    `json:"tool_slug"`
	ToolName         string    `json:"tool_name"`
	ToolActive       bool      `json:"tool_active"`
	ToolDisplayOrder int       `json:"tool_display_order"`
	TagID            uint      `json:"tag_id"`
	TagSlug          string    `json:"tag_slug"`
	TagName          string    `json:"tag_name"`
	TagColor         string    `json:"tag_color,omitempty"`
	AssignmentCount  int       `json:"assignment_count"`
	AssignedAt       time.Time `json:"assigned_at"`
}

type BulkOperationType string

const (
	BulkAssign BulkOperationType = "assign"
	BulkRemove BulkOperationType = "remove"
)

// BulkTagOperation is built by NewBulkTagOperation, never persisted
type BulkTagOperation struct {
	Type                 BulkOperationType `json:"type"`
	ToolIDs              []uint            `json:"tool_ids"`
	TagIDs               []uint            `json:"tag_ids"`
	RequiresConfirmation bool              `json:"requires_confirmation"`
	EstimatedChanges     int               `json:"estimated_changes"`
	Confirmed            bool              `json:"confirmed"`
}

type ToolTagDiff struct {
	ToolID        uint   `json:"tool_id"`
	ToolSlug      string `json:"tool_slug"`
	CurrentTagIDs []uint `json:"current_tag_ids"`
	NewTagIDs     []uint `json:"new_tag_ids"`
	AddedTagIDs   []uint `json:"added_tag_ids"`
	RemovedTagIDs []uint `json:"removed_tag_ids"`
}

type BulkPreviewSummary struct {
	TotalTools           int `json:"total_tools"`
	TotalTagChanges      int `json:"total_tag_changes"`
	NewRelationships     int `json:"new_relationships"`
	RemovedRelationships int `json:"removed_relationships"`
}

type BulkOperationPreview struct {
	Operation      BulkTagOperation   `json:"operation"`
	Tools          []ToolTagDiff      `json:"tools"`
	Summary        BulkPreviewSummary `json:"summary"`
	UnknownToolIDs []uint             `json:"unknown_tool_ids"`
	UnknownTagIDs  []uint             `json:"unknown_tag_ids"`
	Warnings       []string           `json:"warnings"`
}

type BulkOperationResult struct {
	Type          BulkOperationType `json:"type"`
	TotalChanges  int               `json:"total_changes"`
	Added         int               `json:"added"`
	Removed       int               `json:"removed"`
	ToolsAffected int               `json:"tools_affected"`
	TagsAffected  int               `json:"tags_affected"`
	Warnings      []string          `json:"warnings"`
	Committed     bool              `json:"committed"`
}

type OrphanTool struct {
	ID       uint   `json:"id"`
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

type OrphanTag struct {
	ID       uint   `json:"id"`
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	IsSystem bool   `json:"is_system"`
}

// OrphanedEntityCheck CanAutoResolve is false when there are no orphaned tags or any of them is a system tag
type OrphanedEntityCheck struct {
	OrphanedTools    []OrphanTool `json:"orphaned_tools"`
	OrphanedTags     []OrphanTag  `json:"orphaned_tags"`
	CanAutoResolve   bool         `json:"can_auto_resolve"`
	SuggestedActions []string     `json:"suggested_actions"`
}

type SkippedTag struct {
	TagID  uint   `json:"tag_id"`
	Slug   string `json:"slug"`
	Reason string `json:"reason"`
}

type OrphanResolution struct {
	ToolsReviewed int          `json:"tools_reviewed"`
	TagsRemoved   int          `json:"tags_removed"`
	RemovedTagIDs []uint       `json:"removed_tag_ids"`
	SkippedTags   []SkippedTag `json:"skipped_tags"`
}

type TagUsageStatistics struct {
	TagID           uint    `json:"tag_id"`
	TagSlug         string  `json:"tag_slug"`
	TagName         string  `json:"tag_name"`
	TotalTools      int     `json:"total_tools"`
	ActiveTools     int     `json:"active_tools"`
	InactiveTools   int     `json:"inactive_tools"`
	UsagePercentage float64 `json:"usage_percentage"` // 0-100
	PopularityRank  int     `json:"popularity_rank"`
	AddedLast7Days  int     `json:"added_last_7_days"`
	AddedLast30Days int     `json:"added_last_30_days"`
}

type IssueCategory string

const (
	IssueError      IssueCategory = "error"
	IssueWarning    IssueCategory = "warning"
	IssueSuggestion IssueCategory = "suggestion"
)

type ValidationIssue struct {
	Category IssueCategory `json:"category"`
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	ToolID   *uint         `json:"tool_id,omitempty"`
	TagID    *uint         `json:"tag_id,omitempty"`
}

type RelationshipValidationResult struct {
	IsValid     bool              `json:"is_valid"`
	Errors      []ValidationIssue `json:"errors"`
	Warnings    []ValidationIssue `json:"warnings"`
	Suggestions []ValidationIssue `json:"suggestions"`
}
