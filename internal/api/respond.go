package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/DrSkyle/avtan/pkg/graph"
	"github.com/DrSkyle/avtan/pkg/kv"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

// errBadRequest marks decode and validation failures.
var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, graph.ErrInvalidLabel),
		errors.Is(err, graph.ErrInvalidEndpoint),
		errors.Is(err, graph.ErrInvalidGraphName),
		errors.Is(err, graph.ErrInvalidQuery),
		errors.Is(err, kv.ErrInvalidKey):
		return http.StatusBadRequest
	case errors.Is(err, graph.ErrDuplicateIdentifier),
		errors.Is(err, graph.ErrDuplicateGraphName),
		errors.Is(err, kv.ErrKeyExists):
		return http.StatusConflict
	case errors.Is(err, graph.ErrDanglingReference):
		return http.StatusUnprocessableEntity
	case errors.Is(err, graph.ErrUnknownNode),
		errors.Is(err, graph.ErrGraphNotFound),
		errors.Is(err, kv.ErrKeyNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

// decode reads a JSON body into dst and validates it.
func (s *Server) decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid body: %v", errBadRequest, err)
	}
	if err := s.validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %s", errBadRequest, describeValidation(err))
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := e.Field()
		switch e.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of %s", field, e.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s exceeds %s", field, e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", field, e.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
