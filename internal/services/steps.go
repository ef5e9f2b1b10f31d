package services

import "github.com/KRaymonne/pro/internal/apperr"

// Step is the workflow cursor a client walks through during one session:
// read the poem, listen to the narration, record, done.
type Step string

const (
	StepReading   Step = "lecture"
	StepListening Step = "ecoute"
	StepRecording Step = "enregistrement"
	StepCompleted Step = "terminee"
)

// Steps is the fixed forward order of the workflow.
var Steps = []Step{StepReading, StepListening, StepRecording, StepCompleted}

// NextStep advances the workflow cursor. The last transition, from the
// recording step to completed, never happens here: it only happens through a
// successful session finalization.
func NextStep(current Step) (Step, error) {
	switch current {
	case StepReading:
		return StepListening, nil
	case StepListening:
		return StepRecording, nil
	case StepRecording:
		return "", apperr.Validation("l'étape d'enregistrement se termine par la finalisation de la lecture")
	case StepCompleted:
		return "", apperr.Validation("la lecture est déjà terminée")
	}
	return "", apperr.Validation("étape inconnue")
}
