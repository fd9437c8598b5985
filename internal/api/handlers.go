package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"careercast/internal/domain/user"
	"careercast/pkg/errors"

	authservice "careercast/internal/services/auth"
)

// maxBodySize caps request bodies; prediction inputs are small flat objects.
const maxBodySize = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}

// HandleSignup registers a new account.
func (h *Handlers) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	u, err := h.auth.Signup(r.Context(), authservice.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, errors.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "username, email and password are required")
		case errors.Is(err, errors.ErrDuplicateKey):
			writeError(w, http.StatusConflict, "username or email already taken")
		default:
			h.log.Errorf("Signup failed: %v", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// HandleLogin authenticates by username or email.
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := h.auth.Login(r.Context(), authservice.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, errors.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "username and password are required")
		case errors.Is(err, authservice.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid username or password")
		default:
			h.log.Errorf("Login failed: %v", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token: resp.Token,
		User:  toUserResponse(resp.User),
	})
}

type predictResponse struct {
	PredictedJobRoleID int64    `json:"predicted_job_role_id"`
	PredictedJobRole   string   `json:"predicted_job_role"`
	Confidence         *float64 `json:"confidence"`
}

// HandlePredict runs one inference over the flat JSON object in the body.
// Anonymous callers are served; a valid bearer token links the stored record
// to the account.
func (h *Handlers) HandlePredict(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	var input map[string]any
	if err := json.Unmarshal(body, &input); err != nil || input == nil {
		writeError(w, http.StatusBadRequest, "body must be a JSON object of feature values")
		return
	}

	// The wire order of the object's keys matters for schema-less models;
	// map iteration would scramble it.
	keys, err := orderedKeys(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "body must be a JSON object of feature values")
		return
	}

	var userID *string
	if claims := claimsFromContext(r.Context()); claims != nil {
		userID = &claims.UserID
	}

	result, err := h.predictor.Execute(r.Context(), input, keys, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "prediction failed")
		return
	}

	writeJSON(w, http.StatusOK, predictResponse{
		PredictedJobRoleID: result.PredictedID,
		PredictedJobRole:   result.Label,
		Confidence:         result.Confidence,
	})
}

// orderedKeys extracts the top-level keys of a JSON object in wire order.
func orderedKeys(body []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(body))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object")
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key")
		}
		keys = append(keys, key)
		if err := skipValue(dec); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); ok && (delim == '{' || delim == '[') {
		depth := 1
		for depth > 0 {
			tok, err := dec.Token()
			if err != nil {
				return err
			}
			if d, ok := tok.(json.Delim); ok {
				switch d {
				case '{', '[':
					depth++
				case '}', ']':
					depth--
				}
			}
		}
	}
	return nil
}

type historyResponse struct {
	Predictions any `json:"predictions"`
	Count       int `json:"count"`
}

// HandleHistory returns the calling user's prediction history, newest first.
func (h *Handlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	limit := parseLimit(r, 0)
	records, err := h.history.ForUser(r.Context(), claims.UserID, limit)
	if err != nil {
		h.log.Errorf("History lookup failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	writeJSON(w, http.StatusOK, historyResponse{Predictions: records, Count: len(records)})
}

// HandleAdminPredictions returns the cross-user audit view.
func (h *Handlers) HandleAdminPredictions(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 0)
	records, err := h.history.All(r.Context(), limit)
	if err != nil {
		h.log.Errorf("Audit listing failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load predictions")
		return
	}

	writeJSON(w, http.StatusOK, historyResponse{Predictions: records, Count: len(records)})
}

// HandleAdminExportCSV streams the audit view as a CSV attachment.
func (h *Handlers) HandleAdminExportCSV(w http.ResponseWriter, r *http.Request) {
	filename := fmt.Sprintf("predictions_%s.csv", time.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := h.history.ExportCSV(r.Context(), w); err != nil {
		// Headers may already be gone; log and abort the stream.
		h.log.Errorf("CSV export failed: %v", err)
	}
}

func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return limit
}
