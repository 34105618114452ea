package handlers

import (
	"errors"
	"net/http"
	"strings"

	"dashboard/internal/domain"
	"dashboard/internal/i18n"
	"dashboard/internal/tools"
)

type toolPage[I any] struct {
	page
	Heading     string
	Action      string
	SubmitLabel string
	BusyLabel   string
	Tones       []string

	Input        I
	Output       string
	ToolError    string
	Credits      int
	CanSubmit    bool
	Loading      bool
	OutOfCredits bool
}

type toolMeta struct {
	page, heading, action, submit, busy string
}

var (
	contentMeta    = toolMeta{"content", "Content Generator", "/content", i18n.Generate, i18n.Generating}
	summarizerMeta = toolMeta{"summarizer", "Text Summarizer", "/summarizer", i18n.Summarize, i18n.Summarizing}
	correctMeta    = toolMeta{"correct", "Grammar Corrector", "/correct", i18n.CorrectText, i18n.Correcting}
)

func renderTool[I any](a *App, w http.ResponseWriter, r *http.Request, code int, meta toolMeta, snap tools.Snapshot[I]) {
	p := toolPage[I]{
		page:         a.page(r, meta.heading),
		Heading:      meta.heading,
		Action:       meta.action,
		SubmitLabel:  meta.submit,
		BusyLabel:    meta.busy,
		Tones:        domain.Tones,
		Input:        snap.Input,
		Output:       snap.Output,
		ToolError:    snap.Error,
		Credits:      snap.Credits,
		CanSubmit:    snap.CanSubmit,
		Loading:      snap.State == tools.StateLoading,
		OutOfCredits: snap.Credits <= 0 && snap.State != tools.StateLoading,
	}
	a.render(w, r, code, meta.page, p)
}

// showTool refreshes the credit balance and renders the view.
func showTool[I any](a *App, w http.ResponseWriter, r *http.Request, meta toolMeta, view *tools.View[I]) {
	view.Mount(r.Context())
	renderTool(a, w, r, http.StatusOK, meta, view.Snapshot())
}

// submitTool runs one submission. Refusals (no credits, busy) never reach
// the backend and leave the view as it was.
func submitTool[I any](a *App, w http.ResponseWriter, r *http.Request, meta toolMeta, view *tools.View[I], in I) {
	err := view.Submit(r.Context(), in)
	if errors.Is(err, domain.ErrUnauthorized) {
		http.Redirect(w, r, "/login?next="+meta.action, http.StatusSeeOther)
		return
	}
	snap := view.Snapshot()
	switch {
	case errors.Is(err, domain.ErrNoCredits):
		snap.Error = ""
	case errors.Is(err, domain.ErrBusy):
		snap.Error = "A request is already running."
	}
	renderTool(a, w, r, statusFor(err), meta, snap)
}

func (a *App) ContentForm(w http.ResponseWriter, r *http.Request) {
	ws, ok := a.workspace(w, r)
	if !ok {
		return
	}
	showTool(a, w, r, contentMeta, ws.Generator)
}

func (a *App) GenerateContent(w http.ResponseWriter, r *http.Request) {
	ws, ok := a.workspace(w, r)
	if !ok {
		return
	}
	in := tools.GeneratorInput{
		Heading: strings.TrimSpace(r.PostFormValue("heading")),
		Tone:    strings.TrimSpace(r.PostFormValue("tone")),
	}
	submitTool(a, w, r, contentMeta, ws.Generator, in)
}

func (a *App) SummarizerForm(w http.ResponseWriter, r *http.Request) {
	ws, ok := a.workspace(w, r)
	if !ok {
		return
	}
	showTool(a, w, r, summarizerMeta, ws.Summarizer)
}

func (a *App) Summarize(w http.ResponseWriter, r *http.Request) {
	ws, ok := a.workspace(w, r)
	if !ok {
		return
	}
	words, err := formInt(r, "words")
	if err != nil {
		snap := ws.Summarizer.Snapshot()
		snap.Error = "Words must be a number."
		renderTool(a, w, r, http.StatusBadRequest, summarizerMeta, snap)
		return
	}
	in := tools.SummarizerInput{Text: r.PostFormValue("text"), Words: words}
	submitTool(a, w, r, summarizerMeta, ws.Summarizer, in)
}

func (a *App) CorrectForm(w http.ResponseWriter, r *http.Request) {
	ws, ok := a.workspace(w, r)
	if !ok {
		return
	}
	showTool(a, w, r, correctMeta, ws.Corrector)
}

func (a *App) Correct(w http.ResponseWriter, r *http.Request) {
	ws, ok := a.workspace(w, r)
	if !ok {
		return
	}
	submitTool(a, w, r, correctMeta, ws.Corrector, tools.CorrectorInput{Text: r.PostFormValue("text")})
}
