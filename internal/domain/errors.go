package domain

import (
	"errors"
	"fmt"
)

// ErrFileNotFound reports that the local health table does not exist.
var ErrFileNotFound = errors.New("file not found")

// NetworkError reports a failed fetch of the remote coordinate table.
// StatusCode is zero when the request never produced a response.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DataProcessingError is the catch-all for parse and decode failures.
type DataProcessingError struct {
	Op  string
	Err error
}

func (e *DataProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DataProcessingError) Unwrap() error { return e.Err }

// UserMessage converts a pipeline error into the text shown to the user.
// filename is the health table name referenced by the missing-file guidance.
func UserMessage(err error, filename string) string {
	if errors.Is(err, ErrFileNotFound) {
		return fmt.Sprintf("Arquivo '%s' não encontrado. Por favor, faça o upload do arquivo.", filename)
	}
	return fmt.Sprintf("Ocorreu um erro ao processar os dados: %v", err)
}

// ErrorKind labels an error for metrics and logs.
func ErrorKind(err error) string {
	var netErr *NetworkError
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrFileNotFound):
		return "file_not_found"
	case errors.As(err, &netErr):
		return "network"
	default:
		return "data_processing"
	}
}
