package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/qri-io/jsonschema"

	"github.com/plastmart/b2b/internal/common"
)

var validate = validator.New()

// shapeSchema accepts the structured job columns: an object or an array.
var shapeSchema = func() *jsonschema.Schema {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(`{"type":["object","array"]}`), rs); err != nil {
		panic(err)
	}
	return rs
}()

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.String("error", err.Error()))
	}
}

// writeError writes {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, map[string]string{"error": msg}, status)
}

// writeFailure writes {"success": false, "error": msg}, the shape used by
// the chat and bid endpoints.
func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, map[string]any{"success": false, "error": msg}, status)
}

// statusFor maps service errors to an HTTP status and a client-facing
// message. Unexpected errors are logged and reported generically.
func statusFor(r *http.Request, err error, notFound string) (int, string) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, notFound
	case errors.Is(err, common.ErrInvalidAmount):
		return http.StatusBadRequest, common.ErrInvalidAmount.Error()
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, err.Error()
	}

	reqID, _ := r.Context().Value(CtxRequestID).(string)
	logger.Error("request failed",
		slog.String("path", r.URL.Path),
		slog.String("request_id", reqID),
		slog.String("error", err.Error()))
	return http.StatusInternalServerError, "Internal server error"
}

// decodeAndValidate reads a JSON body into v and runs struct validation.
func decodeAndValidate(r *http.Request, v any) error {
	if err := decodeBody(r, v); err != nil {
		return err
	}
	return validateBody(v)
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", common.ErrValidation)
	}
	return nil
}

// validateBody runs the struct's validate tags, ignoring the named fields.
func validateBody(v any, skip ...string) error {
	var err error
	if len(skip) > 0 {
		err = validate.StructExcept(v, skip...)
	} else {
		err = validate.Struct(v)
	}
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%s is %s: %w", verrs[0].Field(), verrs[0].Tag(), common.ErrValidation)
		}
		return fmt.Errorf("%v: %w", err, common.ErrValidation)
	}
	return nil
}

// checkShape rejects a structured column that is present but neither an
// object nor an array.
func checkShape(ctx context.Context, field string, raw []byte) error {
	if len(raw) == 0 {
		return nil
	}
	keyErrs, err := shapeSchema.ValidateBytes(ctx, raw)
	if err != nil {
		return fmt.Errorf("%s: %v: %w", field, err, common.ErrValidation)
	}
	if len(keyErrs) > 0 {
		return fmt.Errorf("%s must be a JSON object or array: %w", field, common.ErrValidation)
	}
	return nil
}

// pathID parses a numeric mux variable.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer: %w", name, common.ErrValidation)
	}
	return id, nil
}

// actingUID prefers the authenticated uid over one supplied in the body.
func actingUID(r *http.Request, fromBody string) string {
	if uid, ok := UIDFromContext(r.Context()); ok {
		return uid
	}
	return fromBody
}
