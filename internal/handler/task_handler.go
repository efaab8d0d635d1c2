package handler

import (
	"github.com/gin-gonic/gin"

	"docvision/internal/domain"
	"docvision/internal/export"
	"docvision/internal/task"
	"docvision/internal/validator"
)

// TaskCatalog lists what the service can do.
type TaskCatalog struct {
	Tasks           []domain.TaskKind      `json:"tasks"`
	Presets         []string               `json:"presets"`
	EntityTypes     []task.EntityType      `json:"entity_types"`
	FieldTypes      []domain.FieldType     `json:"field_types"`
	MergeStrategies []domain.MergeStrategy `json:"merge_strategies"`
	ExportFormats   []export.Format        `json:"export_formats"`
	LayoutModes     []domain.LayoutMode    `json:"layout_modes"`
}

// TaskHandler serves the task catalog.
type TaskHandler struct {
	fields *validator.FieldValidator
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(fields *validator.FieldValidator) *TaskHandler {
	return &TaskHandler{fields: fields}
}

// List handles GET /api/v1/tasks
// @Summary List tasks
// @Description List task kinds, schema presets, entity types and other option values
// @Tags tasks
// @Produce json
// @Success 200 {object} Response{data=TaskCatalog} "Task catalog"
// @Router /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	RespondOK(c, TaskCatalog{
		Tasks:           task.Kinds(),
		Presets:         validator.PresetNames(),
		EntityTypes:     task.EntityTypes,
		FieldTypes:      h.fields.Types(),
		MergeStrategies: []domain.MergeStrategy{domain.MergeConcatenate, domain.MergeStructured},
		ExportFormats:   []export.Format{export.FormatJSON, export.FormatCSV, export.FormatXLSX},
		LayoutModes:     []domain.LayoutMode{domain.LayoutElements, domain.LayoutSections, domain.LayoutReadingOrder},
	})
}
