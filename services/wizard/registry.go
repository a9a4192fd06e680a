package wizard

import "quotewizard/models"

// stepCatalog is the fixed step sequence. It is never mutated; accessors hand out copies.
var stepCatalog = []models.WizardStep{
	{
		ID:             models.StepAddress,
		Ordinal:        0,
		Title:          "Where are you moving?",
		RequiredFields: []string{models.FieldMoveOrigin, models.FieldMoveDestination},
	},
	{
		ID:             models.StepItems,
		Ordinal:        1,
		Title:          "What are you moving?",
		RequiredFields: []string{models.FieldItemsOrSize},
	},
	{
		ID:             models.StepDateTime,
		Ordinal:        2,
		Title:          "When are you moving?",
		RequiredFields: []string{models.FieldMoveDate, models.FieldTimeOfDay},
	},
	{
		ID:             models.StepPayment,
		Ordinal:        3,
		Title:          "Reserve your move",
		RequiredFields: []string{models.FieldPaymentToken},
	},
}

// StepsInOrder returns the wizard steps in traversal order. Each call returns a fresh copy.
func StepsInOrder() []models.WizardStep {
	steps := make([]models.WizardStep, len(stepCatalog))
	for i, s := range stepCatalog {
		steps[i] = copyStep(s)
	}
	return steps
}

// StepCount is the number of steps before the terminal state.
func StepCount() int {
	return len(stepCatalog)
}

// StepAt returns the step at ordinal.
func StepAt(ordinal int) (models.WizardStep, bool) {
	if ordinal < 0 || ordinal >= len(stepCatalog) {
		return models.WizardStep{}, false
	}
	return copyStep(stepCatalog[ordinal]), true
}

// StepByID looks a step up by id.
func StepByID(id models.StepID) (models.WizardStep, bool) {
	for _, s := range stepCatalog {
		if s.ID == id {
			return copyStep(s), true
		}
	}
	return models.WizardStep{}, false
}

// OwnerOf returns the step that collects field.
func OwnerOf(field string) (models.WizardStep, bool) {
	for _, s := range stepCatalog {
		if s.Owns(field) {
			return copyStep(s), true
		}
	}
	return models.WizardStep{}, false
}

func copyStep(s models.WizardStep) models.WizardStep {
	s.RequiredFields = append([]string(nil), s.RequiredFields...)
	return s
}
