package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Sumatoshi-tech/varnorm/pkg/localnames"
)

// Error kinds reported alongside failed conversions.
const (
	KindParseFailure   = "parse_failure"
	KindNoFunction     = "no_function"
	KindInvalidRequest = "invalid_request"
	KindInternal       = "internal"
)

var errInputTooLarge = errors.New("input exceeds size limit")

// ConvertRequest is the body of /api/convert and /api/plan.
type ConvertRequest struct {
	Base   string `json:"base"`
	Source string `json:"source"`
}

// ConvertResponse is the body returned by /api/convert. Failures keep the
// output field and prefix the message with "Error: ".
type ConvertResponse struct {
	Output    string `json:"output"`
	ErrorKind string `json:"error_kind,omitempty"`
}

// PlanResponse is the body returned by /api/plan.
type PlanResponse struct {
	Result    *localnames.Result `json:"result,omitempty"`
	Error     string             `json:"error,omitempty"`
	ErrorKind string             `json:"error_kind,omitempty"`
}

func (s *Server) handleConvert(rw http.ResponseWriter, hr *http.Request) {
	req, status, err := s.decodeRequest(rw, hr)
	if err != nil {
		s.writeJSON(rw, hr, status, ConvertResponse{Output: "Error: " + err.Error(), ErrorKind: KindInvalidRequest})

		return
	}

	output, err := s.converter.Convert(hr.Context(), req.Base, req.Source)
	if err != nil {
		s.logger.DebugContext(hr.Context(), "conversion failed", "error", err)
		s.writeJSON(rw, hr, http.StatusOK, ConvertResponse{Output: "Error: " + err.Error(), ErrorKind: errorKind(err)})

		return
	}

	s.writeJSON(rw, hr, http.StatusOK, ConvertResponse{Output: output})
}

func (s *Server) handlePlan(rw http.ResponseWriter, hr *http.Request) {
	req, status, err := s.decodeRequest(rw, hr)
	if err != nil {
		s.writeJSON(rw, hr, status, PlanResponse{Error: err.Error(), ErrorKind: KindInvalidRequest})

		return
	}

	result, err := s.converter.Analyze(hr.Context(), req.Base, req.Source)
	if err != nil {
		s.writeJSON(rw, hr, http.StatusUnprocessableEntity, PlanResponse{Error: err.Error(), ErrorKind: errorKind(err)})

		return
	}

	s.writeJSON(rw, hr, http.StatusOK, PlanResponse{Result: result})
}

// decodeRequest reads, validates and decodes the body. The returned status
// is meaningful only with a non-nil error.
func (s *Server) decodeRequest(rw http.ResponseWriter, hr *http.Request) (ConvertRequest, int, error) {
	limit := 2*s.maxInputBytes + bodyOverhead

	body, err := io.ReadAll(http.MaxBytesReader(rw, hr.Body, limit))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return ConvertRequest{}, http.StatusRequestEntityTooLarge, errInputTooLarge
		}

		return ConvertRequest{}, http.StatusBadRequest, fmt.Errorf("read request: %w", err)
	}

	if err = s.validator.Validate(body); err != nil {
		return ConvertRequest{}, http.StatusBadRequest, err
	}

	var req ConvertRequest

	if err = json.Unmarshal(body, &req); err != nil {
		return ConvertRequest{}, http.StatusBadRequest, fmt.Errorf("decode request: %w", err)
	}

	if int64(len(req.Base)+len(req.Source)) > s.maxInputBytes {
		return ConvertRequest{}, http.StatusRequestEntityTooLarge, errInputTooLarge
	}

	return req, http.StatusOK, nil
}

func (s *Server) writeJSON(rw http.ResponseWriter, hr *http.Request, status int, value any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)

	if err := json.NewEncoder(rw).Encode(value); err != nil {
		s.logger.ErrorContext(hr.Context(), "failed to encode JSON response", "error", err)
	}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, localnames.ErrParseFailure):
		return KindParseFailure
	case errors.Is(err, localnames.ErrNoFunctionFound):
		return KindNoFunction
	default:
		return KindInternal
	}
}
