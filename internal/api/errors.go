package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotAuthenticated авторизованный вызов без сохранённой сессии:
	// обрывается до любого сетевого запроса
	ErrNotAuthenticated = errors.New("not logged in")

	// ErrUnreachable транспортная ошибка, до HTTP-статуса дело не дошло
	ErrUnreachable = errors.New("unable to connect to server")
)

// APIError ответ бэкенда со статусом вне 2xx
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsAuthExpired ответ 401: вызывающая сторона обязана очистить сессию
func IsAuthExpired(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// messageForStatus детерминированное сопоставление статуса и текста ошибки.
// serverMsg — поле message из тела ответа, если бэкенд его прислал.
func messageForStatus(status int, serverMsg string) string {
	switch status {
	case http.StatusUnauthorized:
		return "session expired, please log in again"
	case http.StatusForbidden:
		return "permission denied"
	case http.StatusNotFound:
		return "not found"
	case http.StatusConflict:
		if serverMsg != "" {
			return serverMsg
		}
		return "already exists"
	case http.StatusRequestEntityTooLarge:
		return "image is too large"
	case http.StatusUnsupportedMediaType:
		return "unsupported image format"
	}
	if status >= http.StatusInternalServerError {
		if serverMsg != "" {
			return serverMsg
		}
		return "server error"
	}
	if serverMsg != "" {
		return serverMsg
	}
	return fmt.Sprintf("request failed (HTTP %d)", status)
}
