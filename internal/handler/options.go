package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"docvision/internal/domain"
	"docvision/internal/validator"
)

// formOptions reads task options from multipart form fields.
func formOptions(c *gin.Context) (domain.TaskOptions, error) {
	opts := domain.TaskOptions{
		Prompt:       c.PostForm("prompt"),
		LayoutMode:   domain.LayoutMode(c.PostForm("layout_mode")),
		OutputFormat: c.PostForm("output_format"),
		Preset:       c.PostForm("preset"),
		DocumentType: c.PostForm("document_type"),
	}

	var err error
	boolFields := map[string]*bool{
		"with_boxes":       &opts.WithBoxes,
		"skip_checkboxes":  &opts.SkipCheckboxes,
		"skip_signatures":  &opts.SkipSignatures,
		"skip_clauses":     &opts.SkipClauses,
		"skip_obligations": &opts.SkipObligations,
	}
	for name, dst := range boolFields {
		if raw := c.PostForm(name); raw != "" {
			if *dst, err = strconv.ParseBool(raw); err != nil {
				return opts, fmt.Errorf("%s must be a boolean", name)
			}
		}
	}

	if raw := c.PostForm("entity_types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				opts.EntityTypes = append(opts.EntityTypes, t)
			}
		}
	}
	if raw := c.PostForm("max_tokens"); raw != "" {
		if opts.MaxTokens, err = strconv.Atoi(raw); err != nil || opts.MaxTokens < 0 {
			return opts, fmt.Errorf("max_tokens must be a non-negative integer")
		}
	}
	if raw := c.PostForm("temperature"); raw != "" {
		t, err := strconv.ParseFloat(raw, 64)
		if err != nil || t < 0 || t > 2 {
			return opts, fmt.Errorf("temperature must be a number between 0 and 2")
		}
		opts.Temperature = &t
	}
	if raw := c.PostForm("schema"); raw != "" {
		s, err := validator.LoadSchema([]byte(raw))
		if err != nil {
			return opts, err
		}
		opts.Schema = s
	}
	return opts, nil
}

// checkOptions rejects option values a handler cannot act on.
func checkOptions(opts domain.TaskOptions) error {
	if opts.Schema != nil {
		if err := validator.CheckSchema(opts.Schema); err != nil {
			return err
		}
	}
	if opts.Preset != "" {
		if _, err := validator.Preset(opts.Preset); err != nil {
			return err
		}
	}
	return nil
}

// respondBadOptions reports an option parsing failure as a 4xx.
func respondBadOptions(c *gin.Context, err error) {
	if status, code, msg := MapDomainError(err); status < 500 {
		RespondError(c, status, code, msg)
		return
	}
	RespondError(c, http.StatusBadRequest, "INVALID_OPTIONS", err.Error())
}
