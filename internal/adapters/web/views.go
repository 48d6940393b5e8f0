package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/mikey/spamguard/internal/core"
)

//go:embed templates/*.html
var templateFS embed.FS

const pageTemplate = "index.html"

// Messages shown for the empty-input warning and the unavailable-model error
const (
	msgEmptyInput       = "Please enter an email to analyze"
	msgModelUnavailable = "Model not loaded properly - please check your model files"
)

// resultView is one of the two fixed verdict messages
type resultView struct {
	Spam    bool
	Icon    string
	Title   string
	Message string
}

var (
	spamResult = resultView{
		Spam:    true,
		Icon:    "❌",
		Title:   "Spam Detected!",
		Message: "This email appears to be suspicious.",
	}
	safeResult = resultView{
		Icon:    "✅",
		Title:   "Safe Email",
		Message: "This email appears to be legitimate.",
	}
)

// pageData is passed to the page template
type pageData struct {
	Title        string
	Input        string
	Warning      string
	Error        string
	LoadError    string
	Result       *resultView
	ProcessingID string
}

// renderResult maps a verdict to its fixed message
func renderResult(v *core.Verdict) resultView {
	if v.Label == core.LabelSpam {
		return spamResult
	}
	return safeResult
}

// failure describes how an analysis error is reported
type failure struct {
	status  int
	kind    string
	message string
	warning bool
}

func describeError(err error) failure {
	switch {
	case errors.Is(err, core.ErrEmptyInput):
		return failure{http.StatusUnprocessableEntity, "empty_input", msgEmptyInput, true}
	case errors.Is(err, core.ErrModelUnavailable):
		return failure{http.StatusServiceUnavailable, "model_unavailable", msgModelUnavailable, false}
	default:
		return failure{http.StatusInternalServerError, "prediction_failed", fmt.Sprintf("Analysis failed: %v", err), false}
	}
}

func parseTemplates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}
