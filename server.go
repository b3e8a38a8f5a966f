package storefront

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/graphql-go/graphql/gqlerrors"

	"github.com/nlstn/go-storefront/internal/observability"
)

const contentTypeJSON = "application/json"

// maxBodyBytes bounds the size of a POSTed request document.
const maxBodyBytes = 1 << 20

// ServeHTTP implements http.Handler.
//
// POST accepts a JSON body {query, variables, operationName}. GET reads the
// same members from the query string and only runs queries.
func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.execute(r.Context(), req, r.Method == http.MethodGet)
	if err != nil {
		status := MapErrorToHTTPStatus(err)
		if status == http.StatusMethodNotAllowed {
			w.Header().Set("Allow", http.MethodPost)
		}
		s.writeResult(w, r, status, res)
		return
	}
	s.writeResult(w, r, http.StatusOK, res)
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (Request, error) {
	var req Request
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if vars := q.Get("variables"); vars != "" {
			if err := json.Unmarshal([]byte(vars), &req.Variables); err != nil {
				return req, fmt.Errorf("%w: variables must be a JSON object", ErrBadRequest)
			}
		}
	case http.MethodPost:
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err := dec.Decode(&req); err != nil {
			return req, fmt.Errorf("%w: malformed JSON body: %v", ErrBadRequest, err)
		}
	default:
		return req, fmt.Errorf("%w: %s", ErrMethodNotAllowed, r.Method)
	}
	if req.Query == "" {
		return req, fmt.Errorf("%w: query is required", ErrBadRequest)
	}
	return req, nil
}

func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToHTTPStatus(err)
	if status == http.StatusMethodNotAllowed {
		w.Header().Set("Allow", "GET, POST")
	}
	s.writeResult(w, r, status, &Result{Errors: gqlerrors.FormatErrors(err)})
}

func (s *Service) writeResult(w http.ResponseWriter, r *http.Request, status int, res *Result) {
	// Server-Timing metrics must be in place before the header is written.
	observability.RecordDBTiming(r.Context())

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		_, logger, _ := s.snapshot()
		observability.LoggerWithTrace(r.Context(), logger).Error("failed to write response",
			"error", err)
	}
}
