package services

import (
	"testing"

	"gestion/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from models.PresentationStatus
		to   models.PresentationStatus
		ok   bool
	}{
		{models.PresentationStatusDraft, models.PresentationStatusReady, true},
		{models.PresentationStatusReady, models.PresentationStatusPresented, true},
		// la máquina no retrocede ni saltea
		{models.PresentationStatusDraft, models.PresentationStatusPresented, false},
		{models.PresentationStatusReady, models.PresentationStatusDraft, false},
		{models.PresentationStatusPresented, models.PresentationStatusReady, false},
		{models.PresentationStatusPresented, models.PresentationStatusDraft, false},
		// presented es terminal
		{models.PresentationStatusPresented, models.PresentationStatusPresented, false},
		{models.PresentationStatusDraft, models.PresentationStatusDraft, false},
	}

	for _, tt := range tests {
		if got := canTransition(tt.from, tt.to); got != tt.ok {
			t.Errorf("canTransition(%s, %s) = %v, se esperaba %v", tt.from, tt.to, got, tt.ok)
		}
	}
}

func TestGoalStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		achieved float64
		target   float64
		want     models.GoalStatus
	}{
		{"meta cumplida", 100, 100, models.GoalStatusCompleted},
		{"sobrecumplida", 150, 100, models.GoalStatusCompleted},
		{"en curso", 50, 100, models.GoalStatusInProgress},
		{"sin avance", 0, 100, models.GoalStatusPending},
		{"target cero no se marca cumplida", 50, 0, models.GoalStatusInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := goalStatusFor(tt.achieved, tt.target); got != tt.want {
				t.Errorf("goalStatusFor(%v, %v) = %v, se esperaba %v", tt.achieved, tt.target, got, tt.want)
			}
		})
	}
}
