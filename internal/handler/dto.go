package handler

import (
	"html/template"

	"github.com/agastia7500-collab/arima/internal/race"
)

// Tab identifiers used in the query string and the template.
const (
	TabComprehensive = "comprehensive"
	TabEvaluate      = "evaluate"
	TabSign          = "sign"
)

// StageView is one rendered result block. Body is already escaped; Ran
// distinguishes "never computed" from an empty result.
type StageView struct {
	Name  string
	Title string
	Box   string
	Body  template.HTML
	Ran   bool
}

// PageData feeds the index template.
type PageData struct {
	Tab         string
	ClientReady bool
	Entrants    []race.Entrant
	Selected    int
	StatsSource string
	LookupError string
	Stages      []StageView
	HasResults  bool
}
