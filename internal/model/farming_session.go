package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Scarab is one cost-bearing map device slot entry. Prices and quantities of
// zero are treated as unset, matching the form semantics.
type Scarab struct {
	Name     string  `json:"name" validate:"max=50"`
	Price    float64 `json:"price" validate:"min=0"`
	Quantity float64 `json:"quantity" validate:"min=0,max=5"`
}

// ScarabList is stored as a jsonb column.
type ScarabList []Scarab

func (l ScarabList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *ScarabList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan scarab list: unsupported type %T", src)
	}
	return json.Unmarshal(data, l)
}

type FarmingSession struct {
	ID                 string  `db:"id" json:"id"`
	UserID             string  `db:"user_id" json:"userId"`
	SessionName        string  `db:"session_name" json:"sessionName"`
	SessionDescription string  `db:"session_description" json:"sessionDescription"`
	SessionNotes       *string `db:"session_notes" json:"sessionNotes,omitempty"`
	IsConcluded        bool    `db:"is_concluded" json:"isConcluded"`

	// map info
	MapName      *string  `db:"map_name" json:"mapName,omitempty"`
	IsRandomMap  bool     `db:"is_random_map" json:"isRandomMap"`
	IsOriginator bool     `db:"is_originator" json:"isOriginator"`
	IsSelfFarmed bool     `db:"is_self_farmed" json:"isSelfFarmed"`
	MapCost      *float64 `db:"map_cost" json:"mapCost,omitempty"`
	NumberOfMaps float64  `db:"number_of_maps" json:"numberOfMaps"`

	// chisel info
	IsUsingChisels bool        `db:"is_using_chisels" json:"isUsingChisels"`
	ChiselName     *ChiselName `db:"chisel_name" json:"chiselName,omitempty"`
	ChiselPrice    *float64    `db:"chisel_price" json:"chiselPrice,omitempty"`

	// scarab info
	IsUsingScarabs bool       `db:"is_using_scarabs" json:"isUsingScarabs"`
	Scarabs        ScarabList `db:"scarabs" json:"scarabs,omitempty"`

	// map craft info
	IsUsingMapCraft bool     `db:"is_using_map_craft" json:"isUsingMapCraft"`
	MapCraftName    *string  `db:"map_craft_name" json:"mapCraftName,omitempty"`
	MapCraftPrice   *float64 `db:"map_craft_price" json:"mapCraftPrice,omitempty"`

	// set on completion
	TotalReturns    *float64 `db:"total_returns" json:"totalReturns,omitempty"`
	DivCost         *float64 `db:"div_cost" json:"divCost,omitempty"`
	TotalDurationMs *int64   `db:"total_duration_ms" json:"totalDuration,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type CreateFarmingSessionParams struct {
	UserID             string      `validate:"required"`
	SessionName        string      `validate:"required,min=2,max=50"`
	SessionDescription string      `validate:"required,min=2,max=250"`
	SessionNotes       *string     `validate:"omitempty,max=250"`
	MapName            *string     `validate:"omitempty,min=2,max=50"`
	IsRandomMap        bool
	IsOriginator       bool
	IsSelfFarmed       bool
	MapCost            *float64 `validate:"omitempty,min=0"`
	NumberOfMaps       float64  `validate:"min=1,max=1000"`
	IsUsingChisels     bool
	ChiselName         *ChiselName
	ChiselPrice        *float64 `validate:"omitempty,min=0"`
	IsUsingScarabs     bool
	Scarabs            ScarabList `validate:"omitempty,dive"`
	IsUsingMapCraft    bool
	MapCraftName       *string  `validate:"omitempty,max=50"`
	MapCraftPrice      *float64 `validate:"omitempty,min=0"`
}

// UpdateSessionInfoParams is the replaceable subset of session fields: the
// name, description and map info. Notes and conclusion state have their own
// operations.
type UpdateSessionInfoParams struct {
	SessionName        string  `validate:"required,min=2,max=50"`
	SessionDescription string  `validate:"required,min=2,max=250"`
	IsRandomMap        bool
	MapName            *string `validate:"omitempty,min=2,max=50"`
	IsOriginator       bool
	IsSelfFarmed       bool
	MapCost            *float64 `validate:"omitempty,min=0"`
	NumberOfMaps       float64  `validate:"min=1,max=1000"`
}
