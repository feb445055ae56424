package server

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/bunkerdash/internal/chart"
	"github.com/theirongolddev/bunkerdash/internal/dashboard"
	"github.com/theirongolddev/bunkerdash/internal/logging"
	"github.com/theirongolddev/bunkerdash/internal/model"
	"github.com/theirongolddev/bunkerdash/internal/view"
)

type errorBody struct {
	Error  string                 `json:"error"`
	Fields []dashboard.FieldError `json:"fields,omitempty"`
}

type resultBody struct {
	Command string             `json:"command"`
	Effects []dashboard.Effect `json:"effects"`
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleIndex(w http.ResponseWriter, r *http.Request) {
	out, err := view.Render(s.dispatch.Store().State())
	if err != nil {
		logging.ForContext(r.Context()).WithError(err).Error("render failed")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(out))
}

func (s *Service) handleChart(w http.ResponseWriter, r *http.Request) {
	state := s.dispatch.Store().State()
	q := r.URL.Query()

	rng := state.UI.MrrTimeRange
	if raw := q.Get("range"); raw != "" {
		parsed, err := model.ParseTimeRange(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rng = parsed
	}

	var hover *float64
	if raw := q.Get("hover"); raw != "" {
		x, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			http.Error(w, "invalid hover position", http.StatusBadRequest)
			return
		}
		hover = &x
	}

	svg, err := view.ChartSVG(state, rng, hover)
	if errors.Is(err, chart.ErrInsufficientData) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(chart.InsufficientDataMessage))
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write([]byte(svg))
}

func (s *Service) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.dispatch.Store().State())
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	current := Event{
		Type:      "snapshot",
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

// handleForm submits a modal form. formType selects the command, as the
// hidden field of the page's forms does.
func (s *Service) handleForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	formType := r.PostForm.Get("formType")

	var (
		res dashboard.Result
		err error
	)
	if formType == string(model.ModalConfirmDelete) && r.PostForm.Get("id") == "" {
		res, err = s.dispatch.Delete(r.Context())
	} else {
		res, err = s.dispatch.Submit(r.Context(), formType, r.PostForm)
	}
	if err != nil {
		s.fail(w, r, statusFor(err), err)
		return
	}
	s.succeed(w, r, resultBody{Command: res.Command, Effects: res.Effects})
}

// handleOpenModal opens a dialog. type names the modal; id selects the row
// to edit; for confirmDelete, kind names what is deleted.
func (s *Service) handleOpenModal(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	t := model.ModalType(r.PostForm.Get("type"))

	var id int64
	if raw := strings.TrimSpace(r.PostForm.Get("id")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.fail(w, r, http.StatusBadRequest, fmt.Errorf("invalid id %q", raw))
			return
		}
		id = parsed
	}

	var err error
	if t == model.ModalConfirmDelete {
		err = s.dispatch.ConfirmDelete(model.EntityKind(r.PostForm.Get("kind")), id)
	} else {
		var data *model.ModalData
		if id != 0 {
			data = &model.ModalData{ID: id}
		}
		err = s.dispatch.OpenModal(t, data)
	}
	if err != nil {
		s.fail(w, r, statusFor(err), err)
		return
	}
	s.succeed(w, r, s.dispatch.Store().Modal())
}

func (s *Service) handleCloseModal(w http.ResponseWriter, r *http.Request) {
	s.dispatch.CloseModal()
	s.succeed(w, r, s.dispatch.Store().Modal())
}

func statusFor(err error) int {
	var ve *dashboard.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, dashboard.ErrNotFound), errors.Is(err, dashboard.ErrNoPendingDelete):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// wantsJSON reports whether the caller is an API client rather than the
// page's own forms.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func (s *Service) succeed(w http.ResponseWriter, r *http.Request, body any) {
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, body)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Service) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	body := errorBody{Error: err.Error()}
	var ve *dashboard.ValidationError
	if errors.As(err, &ve) {
		body.Fields = ve.Fields
	}
	if wantsJSON(r) {
		writeJSON(w, status, body)
		return
	}

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html lang="fr"><head><meta charset="utf-8"><title>Erreur</title></head><body>`)
	b.WriteString("<p>" + html.EscapeString(body.Error) + "</p>")
	if len(body.Fields) > 0 {
		b.WriteString("<ul>")
		for _, f := range body.Fields {
			b.WriteString("<li>" + html.EscapeString(f.Field+": "+f.Message) + "</li>")
		}
		b.WriteString("</ul>")
	}
	b.WriteString(`<p><a href="/">Retour</a></p></body></html>`)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(b.String()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
