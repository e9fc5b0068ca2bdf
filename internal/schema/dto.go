package schema

// Request payloads for the column endpoints.

type columnRequest struct {
	ID           string     `json:"id"`
	Name         string     `json:"name" validate:"required"`
	Type         ColumnType `json:"type" validate:"required"`
	Required     bool       `json:"required"`
	Visible      *bool      `json:"visible"`
	Width        int        `json:"width" validate:"gte=0"`
	Symbol       string     `json:"symbol"`
	Formula      string     `json:"formula"`
	Options      []string   `json:"options"`
	DefaultValue string     `json:"defaultValue"`
	Source       string     `json:"source"`
}

type columnPatchRequest struct {
	Name         *string     `json:"name,omitempty" validate:"omitempty,min=1"`
	Type         *ColumnType `json:"type,omitempty"`
	Required     *bool       `json:"required,omitempty"`
	Visible      *bool       `json:"visible,omitempty"`
	Width        *int        `json:"width,omitempty" validate:"omitempty,gte=0"`
	Symbol       *string     `json:"symbol,omitempty"`
	Formula      *string     `json:"formula,omitempty"`
	Options      *[]string   `json:"options,omitempty"`
	DefaultValue *string     `json:"defaultValue,omitempty"`
	Source       *string     `json:"source,omitempty"`
}

type reorderRequest struct {
	MovedID  string `json:"movedId" validate:"required"`
	BeforeID string `json:"beforeId" validate:"required"`
}

type visibilityRequest struct {
	Visible bool `json:"visible"`
}
