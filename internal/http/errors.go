package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"team-request-service/internal/models"
	"team-request-service/internal/service"
)

type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (re ResponseError) Error() string {
	return re.Message
}

func newResponseError(code string, msg string) ResponseError {
	return ResponseError{
		Code:    code,
		Message: msg,
	}
}

func newInternalError(msg string, args ...any) ResponseError {
	return newResponseError(ErrCodeInternal, fmt.Sprintf(msg, args...))
}

func (rtr *router) handleError(w http.ResponseWriter, err error) {
	respErr := rtr.mapError(err)
	status := statusForCode(respErr.Code)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(&models.ErrorResponse{
		Error: models.Error{
			Code:    respErr.Code,
			Message: respErr.Message,
		},
	})
}

func (rtr *router) mapError(err error) ResponseError {
	var respErr ResponseError
	if errors.As(err, &respErr) {
		return respErr
	}

	switch {
	case errors.Is(err, service.ErrRequestValidation), errors.Is(err, service.ErrTeamValidation),
		errors.Is(err, service.ErrAuthValidation):
		return newResponseError(ErrCodeValidation, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		return newResponseError(ErrCodeNotFound, "user not found")
	case errors.Is(err, service.ErrTeamNotFound):
		return newResponseError(ErrCodeNotFound, "team not found")
	case errors.Is(err, service.ErrRequestNotFound):
		return newResponseError(ErrCodeNotFound, "team request not found")
	case errors.Is(err, service.ErrNoAwaitingRequest):
		return newResponseError(ErrCodeNotFound, "no awaiting team request")
	case errors.Is(err, service.ErrRequestPending):
		return newResponseError(ErrCodeConflict, "user already has an awaiting team request")
	case errors.Is(err, service.ErrAlreadyMember):
		return newResponseError(ErrCodeConflict, "user is already on the team")
	case errors.Is(err, service.ErrRequestVerified):
		return newResponseError(ErrCodeConflict, "team request is already verified")
	case errors.Is(err, service.ErrTeamExists):
		return newResponseError(ErrCodeConflict, "team_name already exists")
	case errors.Is(err, service.ErrUserExists):
		return newResponseError(ErrCodeConflict, "username or email already taken")
	case errors.Is(err, service.ErrNotTeamMember):
		return newResponseError(ErrCodeConflict, "user is not a member of any team")
	case errors.Is(err, service.ErrNoAccess):
		return newResponseError(ErrCodeForbidden, "no access to this team request")
	case errors.Is(err, service.ErrInvalidCredentials):
		return newResponseError(ErrCodeUnauthorized, "invalid username or password")
	default:
		return newInternalError("internal error")
	}
}

func statusForCode(code string) int {
	switch code {
	case ErrCodeBadRequest, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
