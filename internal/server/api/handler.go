package api

import (
	"context"
	"encoding/json"
	"net/http"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/dmitrijs2005/singularity/internal/logging"
	"github.com/dmitrijs2005/singularity/internal/server/audit"
)

const maxBodyBytes = 1 << 20

type gqlRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

type gqlError struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// GraphQLHandler serves a schema over POST (JSON body) and GET (query
// string). A response with errors and no data is a 400.
type GraphQLHandler struct {
	schema *graphql.Schema
	log    logging.Logger
}

func NewGraphQLHandler(s *graphql.Schema, log logging.Logger) *GraphQLHandler {
	return &GraphQLHandler{schema: s, log: log}
}

func (h *GraphQLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "only GET and POST are supported")
		return
	}

	req, err := decodeRequest(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	ctx := withClientIP(r.Context(), audit.ClientIP(r))
	resp := h.schema.Exec(ctx, req.Query, req.OperationName, req.Variables)

	status := http.StatusOK
	if len(resp.Errors) > 0 && isNull(resp.Data) {
		status = http.StatusBadRequest
	}

	body, err := json.Marshal(resp)
	if err != nil {
		h.log.Error(ctx, "encode graphql response", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (*gqlRequest, error) {
	req := &gqlRequest{}
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if v := q.Get("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
				return nil, errBadVariables
			}
		}
	default:
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(req); err != nil {
			return nil, errBadBody
		}
	}
	return req, nil
}

func isNull(data json.RawMessage) bool {
	return len(data) == 0 || string(data) == "null"
}

func writeError(w http.ResponseWriter, status int, msg string) {
	body := gqlError{Errors: []struct {
		Message string `json:"message"`
	}{{Message: msg}}}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type requestError string

func (e requestError) Error() string { return string(e) }

const (
	errBadBody      requestError = "request body must be a JSON object"
	errBadVariables requestError = "variables must be a JSON object"
)

type clientIPKey struct{}

func withClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func clientIPFrom(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}
