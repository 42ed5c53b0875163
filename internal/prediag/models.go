package prediag

import "time"

// Case status values. These match the documents already present in the
// prediagnosticos collection, so field names and values stay untranslated.
const (
	StatusProcessed = "procesado"
	StatusValidated = "validado"
)

// Diagnostic review labels used by doctors.
const (
	ReviewApproved = "aprobo"
	ReviewRejected = "no aprobo"
)

// ModelResult is the AI outcome stored with a case.
type ModelResult struct {
	PneumoniaProbability float64 `json:"probabilidad_neumonia" bson:"probabilidad_neumonia"`
	Label                string  `json:"etiqueta" bson:"etiqueta"`
}

// Prediagnostic is one stored case: uploaded radiograph plus the model's
// classification, awaiting doctor review.
type Prediagnostic struct {
	UserID          string      `json:"user_id" bson:"user_id"`
	PrediagnosticID string      `json:"prediagnostico_id" bson:"prediagnostico_id"`
	RadiographURL   string      `json:"radiografia_url" bson:"radiografia_url"`
	PatientName     string      `json:"paciente_nombre,omitempty" bson:"paciente_nombre,omitempty"`
	ModelResult     ModelResult `json:"resultado_modelo" bson:"resultado_modelo"`
	ProcessedAt     time.Time   `json:"fecha_procesamiento" bson:"fecha_procesamiento"`
	Status          string      `json:"estado" bson:"estado"`
	UploadedAt      time.Time   `json:"fecha_subida" bson:"fecha_subida"`
}

// Diagnostic is a doctor's review of a prediagnostic case.
type Diagnostic struct {
	PrediagnosticID string    `json:"prediagnostico_id" bson:"prediagnostico_id"`
	Label           string    `json:"etiqueta" bson:"etiqueta"`
	Comment         string    `json:"comentario" bson:"comentario"`
	ReviewedAt      time.Time `json:"fecha_revision" bson:"fecha_revision"`
}

// CaseSummary is the listing shape returned for a doctor's case overview.
type CaseSummary struct {
	PrediagnosticID string  `json:"prediagnostico_id"`
	PatientName     string  `json:"paciente_nombre"`
	Date            string  `json:"fecha"`
	Status          string  `json:"estado"`
	AILabel         string  `json:"diagnostico_ia"`
	Probability     float64 `json:"probabilidad"`
}
