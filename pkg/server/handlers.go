package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/vango-dev/addressform/pkg/addressform"
	"github.com/vango-dev/addressform/pkg/render"
	"github.com/vango-dev/addressform/pkg/vdom"
)

// errBadInput marks request bodies that cannot be turned into field values.
var errBadInput = errors.New("bad input")

// result is the JSON reply of the form endpoints and the live socket.
type result struct {
	Errors    map[string]string   `json:"errors"`
	Valid     bool                `json:"valid"`
	Submitted bool                `json:"submitted"`
	Values    *addressform.Values `json:"values,omitempty"`
	Error     string              `json:"error,omitempty"`
}

func resultOf(f *addressform.Form, submitted bool) result {
	res := result{
		Errors:    f.Errors().Map(),
		Valid:     f.Valid(),
		Submitted: submitted,
	}
	if submitted {
		v := f.Values()
		res.Values = &v
	}
	return res
}

// input holds the posted fields. Fields that were not posted are absent.
type input map[addressform.FieldID]string

// apply sets every posted field in declared order.
func (in input) apply(f *addressform.Form) {
	for _, id := range addressform.Fields() {
		if v, ok := in[id]; ok {
			f.Set(id, v)
		}
	}
}

// decodeInput reads a urlencoded or JSON body. Form keys are field paths
// and unknown keys are ignored; JSON bodies follow addressform.Values and
// unknown keys are rejected.
func (s *Server) decodeInput(w http.ResponseWriter, r *http.Request) (input, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxBodySize)

	if isJSON(r.Header.Get("Content-Type")) {
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: %v", errBadInput, err)
		}
		in := make(input)
		if err := flatten("", raw, in); err != nil {
			return nil, err
		}
		return in, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadInput, err)
	}
	in := make(input)
	for key, values := range r.PostForm {
		id, err := addressform.ParseFieldID(key)
		if err != nil || len(values) == 0 {
			continue
		}
		in[id] = values[0]
	}
	return in, nil
}

func flatten(prefix string, raw map[string]any, out input) error {
	for key, value := range raw {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]any:
			if err := flatten(path, v, out); err != nil {
				return err
			}
			continue
		case string, nil:
		default:
			return fmt.Errorf("%w: %s must be a string", errBadInput, path)
		}

		id, err := addressform.ParseFieldID(path)
		if err != nil {
			return fmt.Errorf("%w: %v", errBadInput, err)
		}
		str, _ := value.(string)
		out[id] = str
	}
	return nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}

// wantsJSON reports whether the client should get JSON instead of a page.
func wantsJSON(r *http.Request) bool {
	return isJSON(r.Header.Get("Content-Type")) ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("write response", "error", err)
	}
}

// writePage renders the form page for f.
func (s *Server) writePage(w http.ResponseWriter, status int, f *addressform.Form, message string) {
	body := vdom.Main(vdom.Class("container"),
		vdom.H1(s.config.Title),
		addressform.View(f.Snapshot(), addressform.ViewOptions{Status: message}),
		vdom.Script(vdom.Raw(liveScript)),
	)

	var buf bytes.Buffer
	err := s.renderer.RenderPage(&buf, render.PageData{
		Title:  s.config.Title,
		Styles: pageStyles,
		Body:   body,
	})
	if err != nil {
		s.logger.Error("render page", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	if wantsJSON(r) {
		s.writeJSON(w, http.StatusBadRequest, result{Error: err.Error()})
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}

// handleIndex renders an empty form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, http.StatusOK, s.newForm(), "")
}

// handleSubmit validates the posted values and delivers them when valid.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	in, err := s.decodeInput(w, r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	f := s.newForm()
	in.apply(f)

	ok, err := f.Submit(r.Context())
	switch {
	case err != nil:
		if wantsJSON(r) {
			res := resultOf(f, false)
			res.Error = "submission failed"
			s.writeJSON(w, http.StatusBadGateway, res)
			return
		}
		s.writePage(w, http.StatusBadGateway, f, "Submission failed, please try again.")
	case !ok:
		if wantsJSON(r) {
			s.writeJSON(w, http.StatusUnprocessableEntity, resultOf(f, false))
			return
		}
		s.writePage(w, http.StatusUnprocessableEntity, f, "")
	default:
		if wantsJSON(r) {
			s.writeJSON(w, http.StatusAccepted, resultOf(f, true))
			return
		}
		s.writePage(w, http.StatusAccepted, f, "Data submitted.")
	}
}

// handleValidate returns the error map for the posted values without
// submitting. Only posted fields count as edited.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	in, err := s.decodeInput(w, r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	f := s.newForm()
	in.apply(f)
	f.Aggregate()

	s.writeJSON(w, http.StatusOK, resultOf(f, false))
}

// handleReset renders a cleared form.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	f := s.newForm()
	f.Reset()

	if wantsJSON(r) {
		s.writeJSON(w, http.StatusOK, resultOf(f, false))
		return
	}
	s.writePage(w, http.StatusOK, f, "")
}

// handleOpenAPI serves the cached OpenAPI document.
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(s.openapi)
}
