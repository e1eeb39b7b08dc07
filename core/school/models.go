package school

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// School types form a closed set.
const (
	TypePrimary = "PRIMARY"
	TypeMiddle  = "MIDDLE"
	TypeHigh    = "HIGH"
)

type School struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NewSchool contains information needed to create a new School.
type NewSchool struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address" validate:"required"`
	Type    string `json:"type" validate:"required,oneof=PRIMARY MIDDLE HIGH"`
}

func (ns *NewSchool) Validate(ctx context.Context, validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Address = core.CleanString(ns.Address)
	ns.Type = core.CleanString(ns.Type)
	return validate.StructCtx(ctx, ns)
}

// UpdateSchool defines what information may be provided to modify an existing School.
type UpdateSchool struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Type    string `json:"type" validate:"omitempty,oneof=PRIMARY MIDDLE HIGH"`
}

func (us *UpdateSchool) Validate(ctx context.Context, orig School, validate *validator.Validate) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	if addr := core.CleanString(us.Address); addr != "" {
		us.Address = addr
	} else {
		us.Address = orig.Address
	}
	if typ := core.CleanString(us.Type); typ != "" {
		us.Type = typ
	} else {
		us.Type = orig.Type
	}
	return validate.StructCtx(ctx, us)
}
