// Package validation checks incoming payloads against the session schema
// before anything reaches the stores.
package validation

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/poefarm/tracker-server-go/internal/errors"
	"github.com/poefarm/tracker-server-go/internal/model"
)

// FieldIssue is one schema violation, reported back to the client in the
// error details.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	return &Validator{validate: validator.New()}
}

// maxScarabsPerSession is the map device slot limit.
const maxScarabsPerSession = 5

// SessionCreate validates a full session payload: struct-level bounds first,
// then the conditional rules that depend on the enable flags.
func (v *Validator) SessionCreate(p *model.CreateFarmingSessionParams) error {
	issues := v.structIssues(p)

	issues = append(issues, mapInfoIssues(p.IsRandomMap, p.IsSelfFarmed, p.MapName, p.MapCost)...)

	if p.ChiselName != nil && !p.ChiselName.IsValid() {
		issues = append(issues, FieldIssue{"chiselName", fmt.Sprintf("%q is not a known chisel", *p.ChiselName)})
	}
	if p.IsUsingChisels && p.ChiselPrice == nil {
		issues = append(issues, FieldIssue{"chiselPrice", "Chisel price is required"})
	}

	if p.IsUsingScarabs {
		issues = append(issues, scarabIssues(p.Scarabs)...)
	}

	if p.IsUsingMapCraft {
		if p.MapCraftName == nil {
			issues = append(issues, FieldIssue{"mapCraftName", "Map craft name is required"})
		}
		if p.MapCraftPrice == nil {
			issues = append(issues, FieldIssue{"mapCraftPrice", "Map craft price is required"})
		}
	}

	return asError("invalid session payload", issues)
}

// SessionInfoUpdate validates the replaceable name/description/map subset.
func (v *Validator) SessionInfoUpdate(p *model.UpdateSessionInfoParams) error {
	issues := v.structIssues(p)
	issues = append(issues, mapInfoIssues(p.IsRandomMap, p.IsSelfFarmed, p.MapName, p.MapCost)...)
	return asError("invalid session info payload", issues)
}

// SessionComplete validates the completion payload.
func (v *Validator) SessionComplete(totalReturns, divCost float64) error {
	var issues []FieldIssue
	if totalReturns < 0 {
		issues = append(issues, FieldIssue{"totalReturns", "Total returns must be a positive number"})
	}
	if divCost < 1 {
		issues = append(issues, FieldIssue{"divCost", "Divine cost must be greater than 0"})
	}
	return asError("invalid completion payload", issues)
}

// StintCreate validates a stint interval. The stored duration must agree with
// the supplied interval endpoints.
func (v *Validator) StintCreate(p *model.CreateStintParams) error {
	var issues []FieldIssue
	if p.EndTime.Before(p.StartTime) {
		issues = append(issues, FieldIssue{"endTime", "End time must not be before start time"})
	}
	if p.DurationMs < 0 {
		issues = append(issues, FieldIssue{"duration", "Duration must not be negative"})
	}
	if got := p.EndTime.Sub(p.StartTime) / time.Millisecond; p.DurationMs != int64(got) {
		issues = append(issues, FieldIssue{"duration", "Duration does not match the interval"})
	}
	return asError("invalid stint payload", issues)
}

// ContactSubmit validates a contact message.
func (v *Validator) ContactSubmit(p *model.CreateContactMessageParams) error {
	var issues []FieldIssue
	if p.Subject == "" {
		issues = append(issues, FieldIssue{"subject", "Subject is required"})
	} else if len(p.Subject) > 200 {
		issues = append(issues, FieldIssue{"subject", "Subject must be at most 200 characters"})
	}
	if p.Message == "" {
		issues = append(issues, FieldIssue{"message", "Message is required"})
	} else if len(p.Message) > 5000 {
		issues = append(issues, FieldIssue{"message", "Message must be at most 5000 characters"})
	}
	return asError("invalid contact message", issues)
}

func (v *Validator) structIssues(s any) []FieldIssue {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldIssue{{Field: "", Message: err.Error()}}
	}

	issues := make([]FieldIssue, 0, len(validationErrs))
	for _, fe := range validationErrs {
		issues = append(issues, FieldIssue{
			Field:   lowerFirst(fe.Field()),
			Message: fmt.Sprintf("failed on the %q rule", fe.Tag()),
		})
	}
	return issues
}

func mapInfoIssues(isRandomMap, isSelfFarmed bool, mapName *string, mapCost *float64) []FieldIssue {
	var issues []FieldIssue
	if !isRandomMap && mapName == nil {
		issues = append(issues, FieldIssue{"mapName", "Map name is required"})
	}
	if !isSelfFarmed && mapCost == nil {
		issues = append(issues, FieldIssue{"mapCost", "Map cost is required"})
	}
	return issues
}

func scarabIssues(scarabs model.ScarabList) []FieldIssue {
	var issues []FieldIssue

	totalQuantity := 0.0
	for _, s := range scarabs {
		totalQuantity += s.Quantity
	}
	if totalQuantity > maxScarabsPerSession {
		issues = append(issues, FieldIssue{"scarabs", "You can't use more than 5 scarabs total (map device limit)"})
	}

	for i, s := range scarabs {
		field := fmt.Sprintf("scarabs[%d]", i)
		if s.Name == "" {
			issues = append(issues, FieldIssue{field + ".name", "Name is required when using scarabs"})
		}
		if s.Quantity == 0 {
			issues = append(issues, FieldIssue{field + ".quantity", "Quantity is required when using scarabs"})
		}
		if s.Price == 0 {
			issues = append(issues, FieldIssue{field + ".price", "Price must be greater than 0"})
		}
	}

	return issues
}

func asError(message string, issues []FieldIssue) error {
	if len(issues) == 0 {
		return nil
	}
	return apperrors.ValidationError(message).WithDetails(issues)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]|0x20) + s[1:]
}
