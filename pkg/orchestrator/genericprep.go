package orchestrator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/medsync-ai/orchestrator/pkg/llmprovider"
	"github.com/medsync-ai/orchestrator/pkg/models"
)

// genericDefaultLengthCM and genericDefaultDiameterInches backstop a
// synthetic device's dimensions whenever mapping left them unset (the
// mapping's Insufficient flag is not consulted), giving a best-effort
// placeholder to evaluate against (spec.md §4.7 "a pure function constructs synthetic Device
// records with defaults for missing fields").
const (
	genericDefaultLengthCM        = 150.0
	genericDefaultDiameterInches  = 0.035
)

// runGenericDevicePipeline implements spec.md §4.7's three-step
// generic-device subpipeline: structure raw fragments into merged groups,
// map each group to device field assignments, then synthesize Device
// records with defaults for anything mapping couldn't fill in.
func (o *Orchestrator) runGenericDevicePipeline(ctx context.Context, specs []string) (map[string]*models.Device, error) {
	groups, err := o.structureGenericSpecs(ctx, specs)
	if err != nil {
		return nil, fmt.Errorf("generic structuring: %w", err)
	}
	if len(groups) == 0 {
		return nil, nil
	}

	mapped, err := o.mapGenericFields(ctx, groups)
	if err != nil {
		return nil, fmt.Errorf("generic mapping: %w", err)
	}

	out := make(map[string]*models.Device, len(mapped))
	for _, m := range mapped {
		d := buildSyntheticDevice(m)
		out[d.ID] = d
	}
	return out, nil
}

// genericGroup is one set of fragments the structuring step decided refer
// to the same physical device.
type genericGroup struct {
	Label     string
	Fragments []string
}

func (o *Orchestrator) structureGenericSpecs(ctx context.Context, specs []string) ([]genericGroup, error) {
	model, err := o.Models.Resolve("chain_builder") // fast-tier: cheap structuring pass
	if err != nil {
		return nil, err
	}
	system, err := o.Prompts.Load("chain_builder")
	if err != nil {
		return nil, err
	}

	prompt := "Merge fragments referring to the same physical device. Fragments: " + joinQuoted(specs)
	result, err := o.LLM.CallJSON(ctx, system, []llmprovider.Message{{Role: llmprovider.RoleUser, Content: prompt}}, model)
	if err != nil {
		return nil, err
	}

	rawGroups, _ := result.Content["groups"].([]any)
	groups := make([]genericGroup, 0, len(rawGroups))
	for _, rg := range rawGroups {
		m, ok := rg.(map[string]any)
		if !ok {
			continue
		}
		groups = append(groups, genericGroup{
			Label:     stringField(m, "label"),
			Fragments: stringSlice(m["fragments"]),
		})
	}
	if len(groups) == 0 {
		// No merge signal: treat each fragment as its own group.
		for _, s := range specs {
			groups = append(groups, genericGroup{Label: s, Fragments: []string{s}})
		}
	}
	return groups, nil
}

// genericMapping is one structured group's resolved device field
// assignments, with Insufficient set when mapping could not determine
// enough fields to build a usable synthetic device.
type genericMapping struct {
	Label               string
	Insufficient         bool
	ConicalCategory      models.ConicalCategory
	FitLogic             models.FitLogic
	LogicCategory        []string
	DiameterInches       *float64
	LengthCM             *float64
}

func (o *Orchestrator) mapGenericFields(ctx context.Context, groups []genericGroup) ([]genericMapping, error) {
	model, err := o.Models.Resolve("chain_builder")
	if err != nil {
		return nil, err
	}
	system, err := o.Prompts.Load("chain_builder")
	if err != nil {
		return nil, err
	}

	mapped := make([]genericMapping, 0, len(groups))
	for _, g := range groups {
		prompt := "Map this merged device description to conical_category, fit_logic, logic_category, diameter_inches, length_cm: " + g.Label
		result, err := o.LLM.CallJSON(ctx, system, []llmprovider.Message{{Role: llmprovider.RoleUser, Content: prompt}}, model)
		if err != nil {
			return nil, err
		}
		m := genericMapping{
			Label:           g.Label,
			Insufficient:    boolField(result.Content, "insufficient"),
			ConicalCategory: models.ConicalCategory(stringField(result.Content, "conical_category")),
			FitLogic:        models.FitLogic(stringField(result.Content, "fit_logic")),
			LogicCategory:   stringSlice(result.Content["logic_category"]),
		}
		if v, ok := result.Content["diameter_inches"].(float64); ok {
			m.DiameterInches = &v
		}
		if v, ok := result.Content["length_cm"].(float64); ok {
			m.LengthCM = &v
		}
		mapped = append(mapped, m)
	}
	return mapped, nil
}

// buildSyntheticDevice is the pure, LLM-free third step: it fills any
// mapping gap with a conservative default so the synthetic device can still
// be evaluated, rather than silently dropping it (spec.md §4.7).
func buildSyntheticDevice(m genericMapping) *models.Device {
	diameter := genericDefaultDiameterInches
	if m.DiameterInches != nil {
		diameter = *m.DiameterInches
	}
	length := genericDefaultLengthCM
	if m.LengthCM != nil {
		length = *m.LengthCM
	}
	conical := m.ConicalCategory
	if conical == "" {
		conical = models.LevelL0
	}
	fitLogic := m.FitLogic
	if fitLogic == "" {
		fitLogic = models.FitLogicMath
	}

	id := "generic-" + uuid.NewString()
	d := &models.Device{
		ID:              id,
		ProductName:     m.Label,
		DeviceName:      m.Label,
		ConicalCategory: conical,
		FitLogic:        fitLogic,
		LogicCategory:   m.LogicCategory,
		Dimensions: models.Dimensions{
			OuterDiameterDistal: models.Measurement{Inches: &diameter},
			InnerDiameter:       models.Measurement{Inches: &diameter},
			LengthCM:            &length,
		},
	}
	return d
}

func joinQuoted(items []string) string {
	out := ""
	for i, s := range items {
		if i > 0 {
			out += ", "
		}
		out += "\"" + s + "\""
	}
	return out
}
