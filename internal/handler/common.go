package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"

	"github.com/segyhp/library-circulation/internal/auth"
	"github.com/segyhp/library-circulation/internal/domain"
	"github.com/segyhp/library-circulation/internal/service"
	"github.com/segyhp/library-circulation/pkg/response"
)

var (
	validate = validator.New()
	json     = jsoniter.ConfigCompatibleWithStandardLibrary
)

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
// It writes the 400 response itself and reports whether the caller may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return false
	}

	if err := validate.Struct(dst); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return false
	}

	return true
}

// pathID parses a numeric route variable, answering 400 when it is malformed
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, fmt.Sprintf("Invalid %s", name), err)
		return 0, false
	}
	return id, true
}

// currentMember resolves the member profile of the authenticated caller
func currentMember(w http.ResponseWriter, r *http.Request, authService *service.AuthService) (*domain.Member, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Full authentication is required to access this resource")
		return nil, false
	}

	member, err := authService.CurrentMember(r.Context(), claims)
	if err != nil {
		response.Fail(w, r, err)
		return nil, false
	}
	return member, true
}
